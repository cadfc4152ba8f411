// Package category defines the closed set of food categories shared by listings
// and the preference histogram.
package category

import (
	"bytes"
	"strconv"
)

type Category string

const (
	AyamDaging     Category = "ayam_dagingT"
	IkanSeafood    Category = "ikan_seafoodT"
	TahuTempeTelur Category = "tahu_tempe_telurT"
	Sayur          Category = "sayurT"
	Sambal         Category = "sambalT"
	NasiMiePasta   Category = "nasi_mie_pastaT"
	SopSotoBakso   Category = "sop_soto_baksoT"
	KueRoti        Category = "kue_rotiT"
	JajananPasar   Category = "jajanan_pasarT"
	PudingJeli     Category = "puding_jeliT"
	KeripikKerupuk Category = "keripik_kerupukT"
	BuahMinuman    Category = "buah_minumanT"
)

// Order matters: it is the bucket order of Histogram and of its JSON encoding.
var all = [...]Category{
	AyamDaging,
	IkanSeafood,
	TahuTempeTelur,
	Sayur,
	Sambal,
	NasiMiePasta,
	SopSotoBakso,
	KueRoti,
	JajananPasar,
	PudingJeli,
	KeripikKerupuk,
	BuahMinuman,
}

var index = func() map[Category]int {
	m := make(map[Category]int, len(all))
	for i, c := range all {
		m[c] = i
	}
	return m
}()

// All returns every category in histogram order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all[:])
	return out
}

// Parse returns the category named s.
func Parse(s string) (Category, bool) {
	c := Category(s)
	_, ok := index[c]
	return c, ok
}

func (c Category) Valid() bool {
	_, ok := index[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// Histogram counts interactions per category. Tags outside the enumeration
// are never counted.
type Histogram [len(all)]int

// NewHistogram counts tags, ignoring unknown ones.
func NewHistogram(tags []string) Histogram {
	var h Histogram
	for _, t := range tags {
		if i, ok := index[Category(t)]; ok {
			h[i]++
		}
	}
	return h
}

func (h Histogram) Count(c Category) int {
	i, ok := index[c]
	if !ok {
		return 0
	}
	return h[i]
}

// Total returns the number of counted interactions.
func (h Histogram) Total() int {
	n := 0
	for _, v := range h {
		n += v
	}
	return n
}

// MarshalJSON encodes the histogram as an object with one key per category,
// in enumeration order.
func (h Histogram) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range all {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(string(c)))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(h[i]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
