package ecdsa

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
)

// SignatureParser reads signed digests from a source.
type SignatureParser interface {
	// ParseSignatures parses all records found in source.
	ParseSignatures(source string) ([]*SignedDigest, error)
}

// JSONParser parses signatures from JSON files.
type JSONParser struct {
	MessageField string // field holding the message (default: "message")
	RField       string // field holding r (default: "r")
	SField       string // field holding s (default: "s")
	ZField       string // field holding the digest (default: "z")
	Hasher       Hasher // hash applied to messages without a digest (default: SHA256)
}

// ParseSignatures parses signatures from a JSON file.
//
// Expected format:
//
//	[
//	  {"message": "...", "r": "...", "s": "..."},
//	  {"z": "0x...", "r": "0x...", "s": "0x..."}
//	]
//
// A record with a digest field uses it as is; otherwise the message is hashed.
func (p *JSONParser) ParseSignatures(jsonFile string) ([]*SignedDigest, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Parse reads the JSON document from r.
func (p *JSONParser) Parse(r io.Reader) ([]*SignedDigest, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	messageField := orDefault(p.MessageField, "message")
	rField := orDefault(p.RField, "r")
	sField := orDefault(p.SField, "s")
	zField := orDefault(p.ZField, "z")

	var err error
	signatures := make([]*SignedDigest, 0, len(items))
	for i, item := range items {
		sig := &SignedDigest{}

		if zVal, ok := item[zField]; ok {
			z, err := parseBigInt(zVal)
			if err != nil {
				return nil, fmt.Errorf("record %d: failed to parse z: %w", i, err)
			}
			sig.Z = z
		} else if msgVal, ok := item[messageField]; ok {
			message, ok := msgVal.(string)
			if !ok {
				return nil, fmt.Errorf("record %d: message field must be a string", i)
			}
			sig.Z = HashMessage(p.Hasher, []byte(message))
		} else {
			return nil, fmt.Errorf("record %d: missing message or z field", i)
		}

		rVal, ok := item[rField]
		if !ok {
			return nil, fmt.Errorf("record %d: missing r field", i)
		}
		if sig.R, err = parseBigInt(rVal); err != nil {
			return nil, fmt.Errorf("record %d: failed to parse r: %w", i, err)
		}

		sVal, ok := item[sField]
		if !ok {
			return nil, fmt.Errorf("record %d: missing s field", i)
		}
		if sig.S, err = parseBigInt(sVal); err != nil {
			return nil, fmt.Errorf("record %d: failed to parse s: %w", i, err)
		}

		signatures = append(signatures, sig)
	}

	return signatures, nil
}

// CSVParser parses signatures from CSV files with a header row.
type CSVParser struct {
	MessageCol string // column holding the message (default: "message")
	RCol       string // column holding r (default: "r")
	SCol       string // column holding s (default: "s")
	ZCol       string // column holding the digest (default: "z")
	Hasher     Hasher // hash applied to messages without a digest (default: SHA256)
}

// ParseSignatures parses signatures from a CSV file.
func (p *CSVParser) ParseSignatures(csvFile string) ([]*SignedDigest, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Parse reads CSV records from r.
func (p *CSVParser) Parse(r io.Reader) ([]*SignedDigest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	messageCol := orDefault(p.MessageCol, "message")
	rCol := orDefault(p.RCol, "r")
	sCol := orDefault(p.SCol, "s")
	zCol := orDefault(p.ZCol, "z")

	messageIdx, rIdx, sIdx, zIdx := -1, -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case messageCol:
			messageIdx = i
		case rCol:
			rIdx = i
		case sCol:
			sIdx = i
		case zCol:
			zIdx = i
		}
	}

	if rIdx == -1 || sIdx == -1 {
		return nil, fmt.Errorf("missing required columns: r or s")
	}
	if zIdx == -1 && messageIdx == -1 {
		return nil, fmt.Errorf("missing message or z column")
	}

	signatures := make([]*SignedDigest, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		sig := &SignedDigest{}
		if zIdx >= 0 {
			if sig.Z, err = parseBigInt(record[zIdx]); err != nil {
				return nil, fmt.Errorf("line %d: failed to parse z: %w", line, err)
			}
		} else {
			sig.Z = HashMessage(p.Hasher, []byte(record[messageIdx]))
		}

		if sig.R, err = parseBigInt(record[rIdx]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse r: %w", line, err)
		}
		if sig.S, err = parseBigInt(record[sIdx]); err != nil {
			return nil, fmt.Errorf("line %d: failed to parse s: %w", line, err)
		}

		signatures = append(signatures, sig)
	}

	return signatures, nil
}

// ParseBigInt parses an integer written in decimal, or in hex when it carries
// a 0x prefix or contains a hex letter.
func ParseBigInt(s string) (*big.Int, error) {
	return parseBigInt(s)
}

// parseBigInt parses a big integer from the values a JSON or CSV decoder can
// produce.
func parseBigInt(val interface{}) (*big.Int, error) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		base := 10
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s, base = s[2:], 16
		} else if strings.ContainsAny(s, "abcdefABCDEF") {
			base = 16
		}

		z, ok := new(big.Int).SetString(s, base)
		if !ok || z.Sign() < 0 {
			return nil, fmt.Errorf("invalid number format: %q", v)
		}
		return z, nil

	case json.Number:
		z, ok := new(big.Int).SetString(string(v), 10)
		if !ok || z.Sign() < 0 {
			return nil, fmt.Errorf("invalid number format: %s", v)
		}
		return z, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", val)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
