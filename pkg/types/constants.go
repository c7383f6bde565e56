package types

const (
	// HashSize defines the size of a SHA-256 hash in bytes.
	HashSize = 32

	// MaxDifficulty is the number of hexadecimal characters in a digest. No
	// digest can carry more leading zeros than this.
	MaxDifficulty uint32 = HashSize * 2

	// GenesisTimestamp is the fixed timestamp label of the genesis block.
	GenesisTimestamp = "01/01/2017"

	// GenesisMessage is the fixed payload of the genesis block.
	GenesisMessage = "Genesis block"
)
