package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SelectionList adalah daftar id capaian (CPL / CPMK) yang dipilih di RPS.
// Disimpan sebagai JSON array. Entri yang tidak bisa dibaca sebagai id
// dibuang saat Scan, bukan membuat pembacaan gagal.
type SelectionList []int64

func (s SelectionList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]int64(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SelectionList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = SelectionList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into SelectionList", src)
	}
	*s = ParseSelection(raw)
	return nil
}

// ParseSelection membaca JSON array berisi angka atau string angka.
// Data lama kadang menyimpan id sebagai string, keduanya diterima.
func ParseSelection(raw []byte) SelectionList {
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return SelectionList{}
	}
	out := make(SelectionList, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case float64:
			if v > 0 && v == float64(int64(v)) {
				out = append(out, int64(v))
			}
		case string:
			if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && id > 0 {
				out = append(out, id)
			}
		}
	}
	return out.Dedup()
}

// Dedup membuang id ganda dengan mempertahankan urutan pertama.
func (s SelectionList) Dedup() SelectionList {
	seen := make(map[int64]struct{}, len(s))
	out := make(SelectionList, 0, len(s))
	for _, id := range s {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// GormDataType membuat AutoMigrate memakai kolom text.
func (SelectionList) GormDataType() string { return "text" }

// UnmarshalJSON memakai aturan yang sama dengan Scan.
func (s *SelectionList) UnmarshalJSON(b []byte) error {
	*s = ParseSelection(b)
	return nil
}

func (s SelectionList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int64(s))
}
