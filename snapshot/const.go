package snapshot

const (
	// Bit masks of the Options field
	EndiannessMask   = 0x0001 // Mask for endianness bit (bit 0)
	CollisionMask    = 0x0002 // Mask for key hash collision bit (bit 1)
	ReservedBitsMask = 0x000C // Mask for reserved bits (bits 2-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// CompressionMask selects the compression nibble of header byte 3; the
	// high nibble holds the float encoding.
	CompressionMask = 0x0F

	// MagicSnapshotV1 identifies the snapshot format.
	MagicSnapshotV1 = 0x6D10

	// Version is the payload layout version written by this package.
	Version = 1
)

const (
	HeaderSize     = 32 // fixed header size in bytes
	ChecksumOffset = 24 // byte offset of the checksum in the header
	IndexEntrySize = 16 // key hash (8), column offset (4), reserved (4)

	// maxTextLen is the largest string a uint16 length prefix can describe.
	maxTextLen = 1<<16 - 1
	// maxOrderTerms is the largest order column a uint16 count can describe.
	maxOrderTerms = 1<<16 - 1
)

// metadata strings stored at the start of the payload, in order.
const metadataCount = 6
