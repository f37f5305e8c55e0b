package shapefile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

// dbfHeader is the fixed 32-byte dBASE III/IV header (no third-party DBF
// reader exists anywhere in the example corpus, so this is a deliberate
// minimal stdlib decoder — see DESIGN.md). Field layout mirrors the
// binary.Read-over-a-fixed-struct idiom used for the GSF record headers.
type dbfHeader struct {
	Version     byte
	UpdateYear  byte
	UpdateMonth byte
	UpdateDay   byte
	NumRecords  uint32
	HeaderLen   uint16
	RecordLen   uint16
	Reserved    [20]byte
}

// dbfFieldDescriptor is one 32-byte field descriptor entry.
type dbfFieldDescriptor struct {
	Name     [11]byte
	Type     byte
	DataAddr [4]byte
	Length   byte
	Decimals byte
	Reserved [14]byte
}

const dbfFieldTerminator = 0x0D

// dbfTable holds the decoded field layout and raw record bytes of a DBF
// file; Column extracts a single named field across every record.
type dbfTable struct {
	fields    []dbfFieldDescriptor
	fieldName []string
	recordLen int
	records   [][]byte
}

// decodeDBF parses a complete in-memory DBF file.
func decodeDBF(data []byte) (*dbfTable, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("%w: file too short", ErrDBFMemberAbsent)
	}

	reader := bytes.NewReader(data)
	var hdr dbfHeader
	if err := binary.Read(reader, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("decoding dbf header: %w", err)
	}

	var fields []dbfFieldDescriptor
	var names []string
	for {
		marker, err := reader.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("decoding dbf field descriptors: %w", err)
		}
		if marker == dbfFieldTerminator {
			break
		}
		if err := reader.UnreadByte(); err != nil {
			return nil, err
		}
		var fd dbfFieldDescriptor
		if err := binary.Read(reader, binary.LittleEndian, &fd); err != nil {
			return nil, fmt.Errorf("decoding dbf field descriptor: %w", err)
		}
		fields = append(fields, fd)
		names = append(names, strings.TrimRight(string(fd.Name[:]), "\x00"))
	}

	body := data[hdr.HeaderLen:]
	recordLen := int(hdr.RecordLen)
	table := &dbfTable{fields: fields, fieldName: names, recordLen: recordLen}
	for off := 0; off+recordLen <= len(body) && len(table.records) < int(hdr.NumRecords); off += recordLen {
		rec := body[off : off+recordLen]
		if len(rec) > 0 && rec[0] == '*' {
			continue // deleted record
		}
		table.records = append(table.records, rec)
	}

	return table, nil
}

// Column returns the trimmed string values of a named field across every
// non-deleted record, in record order.
func (t *dbfTable) Column(name string) ([]string, error) {
	idx := -1
	offset := 1 // leading deletion-flag byte
	for i, fieldName := range t.fieldName {
		if strings.EqualFold(fieldName, name) {
			idx = i
			break
		}
		offset += int(t.fields[i].Length)
	}
	if idx < 0 {
		return nil, fmt.Errorf("dbf: no such field %q", name)
	}

	length := int(t.fields[idx].Length)
	values := make([]string, 0, len(t.records))
	for _, rec := range t.records {
		if offset+length > len(rec) {
			continue
		}
		values = append(values, strings.TrimSpace(string(rec[offset:offset+length])))
	}
	return values, nil
}
