// Package barstore persists historical bars as an append-only log of
// length-prefixed, checksummed records, and plays them back in order.
package barstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"

	"github.com/shopspring/decimal"

	"main/internal/model"
)

const (
	recordVersion      uint16 = 1
	recordHeaderSize          = 32
	recordChecksumSize        = 4
)

var (
	recordMagic = [4]byte{'B', 'A', 'R', '1'}
	crcTable    = crc32.MakeTable(crc32.Castagnoli)
)

var (
	ErrInvalidMagic            = errors.New("barstore invalid magic")
	ErrUnsupportedRecordVer    = errors.New("barstore unsupported record version")
	ErrInvalidRecordHeaderSize = errors.New("barstore invalid header size")
	ErrInvalidPayload          = errors.New("barstore invalid bar payload")
)

// RecordHeader identifies one bar record.
type RecordHeader struct {
	Asset  model.AssetID
	Seq    uint64
	TsNano int64
}

func encodeHeader(dst []byte, header RecordHeader, payloadLen int) {
	_ = dst[recordHeaderSize-1]
	copy(dst[0:4], recordMagic[:])
	binary.LittleEndian.PutUint16(dst[4:6], recordVersion)
	binary.LittleEndian.PutUint16(dst[6:8], uint16(recordHeaderSize))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(header.Asset))
	binary.LittleEndian.PutUint32(dst[12:16], uint32(payloadLen))
	binary.LittleEndian.PutUint64(dst[16:24], header.Seq)
	binary.LittleEndian.PutUint64(dst[24:32], uint64(header.TsNano))
}

func decodeRecordHeader(src []byte) (RecordHeader, uint32, error) {
	if len(src) < recordHeaderSize {
		return RecordHeader{}, 0, ErrInvalidRecordHeaderSize
	}
	if !bytes.Equal(src[0:4], recordMagic[:]) {
		return RecordHeader{}, 0, ErrInvalidMagic
	}
	if ver := binary.LittleEndian.Uint16(src[4:6]); ver != recordVersion {
		return RecordHeader{}, 0, ErrUnsupportedRecordVer
	}
	if headerSize := binary.LittleEndian.Uint16(src[6:8]); headerSize != recordHeaderSize {
		return RecordHeader{}, 0, ErrInvalidRecordHeaderSize
	}
	payloadLen := binary.LittleEndian.Uint32(src[12:16])
	h := RecordHeader{
		Asset:  model.AssetID(binary.LittleEndian.Uint32(src[8:12])),
		Seq:    binary.LittleEndian.Uint64(src[16:24]),
		TsNano: int64(binary.LittleEndian.Uint64(src[24:32])),
	}
	return h, payloadLen, nil
}

func checksum(header []byte, payload []byte) uint32 {
	crc := crc32.Update(0, crcTable, header)
	return crc32.Update(crc, crcTable, payload)
}

// encodeBar appends the bar payload: four length-prefixed decimal price
// strings followed by the volume.
func encodeBar(dst []byte, bar model.Bar) []byte {
	dst = appendDecimal(dst, bar.Open)
	dst = appendDecimal(dst, bar.High)
	dst = appendDecimal(dst, bar.Low)
	dst = appendDecimal(dst, bar.Close)
	var vol [8]byte
	binary.LittleEndian.PutUint64(vol[:], uint64(bar.Volume))
	return append(dst, vol[:]...)
}

func decodeBar(src []byte) (model.Bar, error) {
	var bar model.Bar
	var err error
	if bar.Open, src, err = readDecimal(src); err != nil {
		return model.Bar{}, err
	}
	if bar.High, src, err = readDecimal(src); err != nil {
		return model.Bar{}, err
	}
	if bar.Low, src, err = readDecimal(src); err != nil {
		return model.Bar{}, err
	}
	if bar.Close, src, err = readDecimal(src); err != nil {
		return model.Bar{}, err
	}
	if len(src) != 8 {
		return model.Bar{}, ErrInvalidPayload
	}
	bar.Volume = int64(binary.LittleEndian.Uint64(src))
	return bar, nil
}

func appendDecimal(dst []byte, d decimal.Decimal) []byte {
	s := d.String()
	dst = append(dst, byte(len(s)))
	return append(dst, s...)
}

func readDecimal(src []byte) (decimal.Decimal, []byte, error) {
	if len(src) < 1 {
		return decimal.Decimal{}, nil, ErrInvalidPayload
	}
	n := int(src[0])
	if len(src) < 1+n {
		return decimal.Decimal{}, nil, ErrInvalidPayload
	}
	d, err := decimal.NewFromString(string(src[1 : 1+n]))
	if err != nil {
		return decimal.Decimal{}, nil, ErrInvalidPayload
	}
	return d, src[1+n:], nil
}
