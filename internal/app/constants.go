package app

const (
	// MinPlayers and MaxPlayers bound the seats a game may start with.
	MinPlayers = 2
	MaxPlayers = 4

	// DefaultMaxReshuffles bounds the fair-deal loop before the last
	// distribution is accepted as-is.
	DefaultMaxReshuffles = 10
)

// DefaultOpenerToken is the conventional opening card.
const DefaultOpenerToken = "7H"
