package utils

import (
	"bytes"
	"encoding/binary"
	"sort"
)

const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8
	markerSOS    = 0xDA
	markerEOI    = 0xD9
	markerAPP0   = 0xE0
	markerAPP2   = 0xE2

	// 12 signature bytes, sequence number and chunk count.
	iccHeaderLen   = 14
	maxSegmentData = 0xFFFF - 2 - iccHeaderLen
)

var iccSignature = []byte("ICC_PROFILE\x00")

// ExtractJPEGICC returns the embedded ICC profile of a JPEG stream, or nil.
// Multi-segment profiles are reassembled in sequence order.
func ExtractJPEGICC(data []byte) []byte {
	if len(data) < 4 || data[0] != markerPrefix || data[1] != markerSOI {
		return nil
	}

	type chunk struct {
		seq  byte
		data []byte
	}
	var chunks []chunk

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != markerPrefix {
			return nil
		}
		marker := data[pos+1]
		if marker == markerPrefix {
			pos++
			continue
		}
		if marker == markerSOS || marker == markerEOI {
			break
		}
		if (marker >= 0xD0 && marker <= 0xD7) || marker == 0x01 {
			pos += 2
			continue
		}
		length := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		end := pos + 2 + length
		if length < 2 || end > len(data) {
			return nil
		}
		payload := data[pos+4 : end]
		if marker == markerAPP2 && len(payload) > len(iccSignature)+2 && bytes.HasPrefix(payload, iccSignature) {
			chunks = append(chunks, chunk{
				seq:  payload[len(iccSignature)],
				data: payload[len(iccSignature)+2:],
			})
		}
		pos = end
	}

	if len(chunks) == 0 {
		return nil
	}
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].seq < chunks[j].seq })

	var out bytes.Buffer
	for _, c := range chunks {
		out.Write(c.data)
	}
	return out.Bytes()
}

// InjectJPEGICC inserts profile as APP2 segments into a JPEG stream that carries
// none. The segments go right after SOI, or after a leading JFIF APP0 segment.
func InjectJPEGICC(data, profile []byte) []byte {
	if len(profile) == 0 || len(data) < 4 || data[0] != markerPrefix || data[1] != markerSOI {
		return data
	}

	insertAt := 2
	if data[2] == markerPrefix && data[3] == markerAPP0 && len(data) >= 6 {
		length := int(binary.BigEndian.Uint16(data[4:6]))
		if 4+length <= len(data) {
			insertAt = 4 + length
		}
	}

	count := (len(profile) + maxSegmentData - 1) / maxSegmentData
	if count > 255 {
		return data
	}

	var out bytes.Buffer
	out.Grow(len(data) + len(profile) + count*(iccHeaderLen+2))
	out.Write(data[:insertAt])
	for i := range count {
		start := i * maxSegmentData
		end := min(start+maxSegmentData, len(profile))
		segLen := 2 + len(iccSignature) + 2 + (end - start)

		out.WriteByte(markerPrefix)
		out.WriteByte(markerAPP2)
		_ = binary.Write(&out, binary.BigEndian, uint16(segLen))
		out.Write(iccSignature)
		out.WriteByte(byte(i + 1))
		out.WriteByte(byte(count))
		out.Write(profile[start:end])
	}
	out.Write(data[insertAt:])
	return out.Bytes()
}
