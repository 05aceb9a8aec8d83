package domain

import (
	"bytes"
	"encoding/json"
	"maps"
	"math"
	"slices"
	"strconv"
)

// Distance is the best known cost from the start vertex.
type Distance int64

// Infinite marks an unreached vertex. It is greater than any finite path sum,
// since edge weights are capped at MaxWeight.
const Infinite Distance = math.MaxInt64

// IsInfinite reports whether d is the unreached sentinel.
func (d Distance) IsInfinite() bool { return d == Infinite }

// Add extends d by an edge weight. An infinite distance stays infinite.
func (d Distance) Add(w Weight) Distance {
	if d.IsInfinite() {
		return Infinite
	}
	return d + Distance(w)
}

func (d Distance) String() string {
	if d.IsInfinite() {
		return "∞"
	}
	return strconv.FormatInt(int64(d), 10)
}

// MarshalJSON encodes Infinite as null.
func (d Distance) MarshalJSON() ([]byte, error) {
	if d.IsInfinite() {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(int64(d), 10)), nil
}

// UnmarshalJSON decodes null as Infinite.
func (d *Distance) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Infinite
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = Distance(n)
	return nil
}

// MarshalYAML encodes Infinite as the string "inf".
func (d Distance) MarshalYAML() (any, error) {
	if d.IsInfinite() {
		return "inf", nil
	}
	return int64(d), nil
}

// DistanceTable maps each known vertex to its current distance.
type DistanceTable map[Vertex]Distance

// Vertices returns the table's domain in ascending order.
func (t DistanceTable) Vertices() []Vertex {
	return slices.Sorted(maps.Keys(t))
}

// Get returns the distance of v, treating an absent vertex as Infinite.
func (t DistanceTable) Get(v Vertex) Distance {
	if d, ok := t[v]; ok {
		return d
	}
	return Infinite
}

// Clone returns an independent copy of the table.
func (t DistanceTable) Clone() DistanceTable {
	if t == nil {
		return DistanceTable{}
	}
	return maps.Clone(t)
}

// Reachable counts vertices with a finite distance.
func (t DistanceTable) Reachable() int {
	n := 0
	for _, d := range t {
		if !d.IsInfinite() {
			n++
		}
	}
	return n
}
