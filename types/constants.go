package types

const (
	// CensusTreeMaxLevels is the maximum number of levels in the voter census merkle tree.
	CensusTreeMaxLevels = 160
	// CensusKeyMaxLen is the maximum length of a census key in bytes.
	CensusKeyMaxLen = CensusTreeMaxLevels / 8
	// VoteRangeBits is the bit size of the range proven for every committed vote value.
	VoteRangeBits = 64
	// DefaultTranscriptLabel is the label used to seed the proof transcript of
	// every vote when no other label is configured.
	DefaultTranscriptLabel = "zkballot/vote/v1"
)
