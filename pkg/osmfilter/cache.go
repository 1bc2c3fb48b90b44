package osmfilter

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"hash/crc32"
	"os"

	"github.com/pkg/errors"
)

// Parse's three-pass read over a multi-gigabyte PBF extract is the
// slowest step of the pipeline and its output never changes for a given
// extract + MOT filter config, so cmd/shapematch/cmd/visualize can cache
// ParseResult to disk and skip re-parsing on repeat runs (e.g. while
// tuning routing options). WriteCache/ReadCache reuse the teacher's
// pkg/graph/binary.go envelope (magic bytes, version, CRC32 trailer,
// write-to-temp-then-atomic-rename) around a gob-encoded payload, since
// ParseResult's variable-length strings and osm.NodeID-keyed map don't
// fit the teacher's fixed-width unsafe.Slice arrays the way a CSR does.
const (
	cacheMagic   = "SHPMATCH"
	cacheVersion = uint32(1)
)

type cacheHeader struct {
	Magic   [8]byte
	Version uint32
}

// WriteCache serializes pr to path, replacing any existing file only
// once the new one is fully written and checksummed.
func WriteCache(path string, pr *ParseResult) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(pr); err != nil {
		return errors.Wrap(err, "encoding parse result")
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, "create temp cache file")
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	hdr := cacheHeader{Version: cacheVersion}
	copy(hdr.Magic[:], cacheMagic)
	if err := binary.Write(f, binary.LittleEndian, &hdr); err != nil {
		return errors.Wrap(err, "write cache header")
	}
	if _, err := f.Write(payload.Bytes()); err != nil {
		return errors.Wrap(err, "write cache payload")
	}
	checksum := crc32.ChecksumIEEE(payload.Bytes())
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return errors.Wrap(err, "write cache checksum")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "close temp cache file")
	}
	return errors.Wrap(os.Rename(tmpPath, path), "rename cache file")
}

// ReadCache loads a ParseResult previously written by WriteCache,
// rejecting it if the magic/version don't match or the checksum is off.
func ReadCache(path string) (*ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < int(8+4+4) {
		return nil, errors.New("cache file too short")
	}

	var hdr cacheHeader
	r := bytes.NewReader(data)
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, errors.Wrap(err, "read cache header")
	}
	if string(hdr.Magic[:]) != cacheMagic {
		return nil, errors.Errorf("invalid cache magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != cacheVersion {
		return nil, errors.Errorf("unsupported cache version: %d", hdr.Version)
	}

	payload := data[12 : len(data)-4]
	storedCRC := binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(payload) != storedCRC {
		return nil, errors.New("cache checksum mismatch")
	}

	var pr ParseResult
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&pr); err != nil {
		return nil, errors.Wrap(err, "decoding parse result")
	}
	return &pr, nil
}
