package common

// Names of the key codecs accepted in the config.
const (
	// CodecText selects the ascii decimal key encoding.
	CodecText = "text"

	// CodecNative selects the 8 byte host order key encoding.
	CodecNative = "native"

	// CodecBigEndian selects the 8 byte big endian key encoding.
	CodecBigEndian = "bigendian"
)
