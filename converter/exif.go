package converter

import "bytes"

// JPEG stream markers.
const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1
	markerTEM  = 0x01
)

var exifHeader = []byte("Exif\x00\x00")

// exifPayload returns a copy of the raw APP1 Exif payload embedded in a
// JPEG stream, or nil when data is not a JPEG or carries no Exif segment.
// The payload keeps its "Exif\0\0" prefix so it round-trips verbatim.
func exifPayload(data []byte) []byte {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil
	}

	i := 2
	for i+2 <= len(data) {
		if data[i] != 0xFF {
			return nil
		}
		marker := data[i+1]

		// fill bytes before a marker
		if marker == 0xFF {
			i++
			continue
		}
		// standalone markers carry no length field
		if marker == markerTEM || (marker >= 0xD0 && marker <= 0xD7) {
			i += 2
			continue
		}
		// Exif lives before the scan data; stop at SOS or EOI
		if marker == markerSOS || marker == markerEOI {
			return nil
		}
		if i+4 > len(data) {
			return nil
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		if length < 2 || i+2+length > len(data) {
			return nil
		}

		if marker == markerAPP1 {
			payload := data[i+4 : i+2+length]
			if bytes.HasPrefix(payload, exifHeader) {
				out := make([]byte, len(payload))
				copy(out, payload)
				return out
			}
		}
		i += 2 + length
	}
	return nil
}

// withExif splices an APP1 Exif segment into a freshly encoded JPEG stream,
// after the SOI marker and any APP0 segment. The stream is returned
// unchanged when it is not a JPEG or the payload cannot fit one segment.
func withExif(encoded, payload []byte) []byte {
	if len(payload) == 0 || len(payload)+2 > 0xFFFF {
		return encoded
	}
	if len(encoded) < 2 || encoded[0] != 0xFF || encoded[1] != markerSOI {
		return encoded
	}

	insert := 2
	for insert+4 <= len(encoded) && encoded[insert] == 0xFF && encoded[insert+1] == markerAPP0 {
		length := int(encoded[insert+2])<<8 | int(encoded[insert+3])
		if length < 2 || insert+2+length > len(encoded) {
			break
		}
		insert += 2 + length
	}

	segLen := len(payload) + 2
	out := make([]byte, 0, len(encoded)+4+len(payload))
	out = append(out, encoded[:insert]...)
	out = append(out, 0xFF, markerAPP1, byte(segLen>>8), byte(segLen))
	out = append(out, payload...)
	out = append(out, encoded[insert:]...)
	return out
}
