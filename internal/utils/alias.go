package utils

var aliasAdj = []string{
	"Amber", "Brave", "Calm", "Dusty", "Eager", "Fuzzy", "Gentle", "Hasty",
	"Icy", "Jolly", "Lucky", "Mellow", "Nimble", "Quiet", "Rusty", "Sunny",
	"Swift", "Tiny", "Witty", "Zesty",
}

var aliasAnimal = []string{
	"Badger", "Crane", "Dingo", "Falcon", "Gecko", "Heron", "Ibis", "Koala",
	"Lemur", "Marten", "Newt", "Otter", "Panda", "Quokka", "Raven", "Stoat",
	"Tapir", "Walrus", "Yak", "Zebu",
}

// GenAlias returns a random device name. It never contains spaces so it
// stays a single token on the command prompt.
func GenAlias() string {
	return RandChoice(aliasAdj) + "-" + RandChoice(aliasAnimal)
}
