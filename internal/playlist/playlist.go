package playlist

import "fmt"

// Difficulty is one classified difficulty of a song
type Difficulty struct {
	Name           string  `json:"name"`
	Characteristic string  `json:"characteristic"`
	Diff           float64 `json:"diff"`
}

// Song aggregates every classified difficulty of one song within a bucket
type Song struct {
	SongName     string       `json:"songName"`
	Difficulties []Difficulty `json:"difficulties"`
	Hash         string       `json:"hash"`
}

// SongKey is the identity of a song entry
type SongKey struct {
	Name string
	Hash string
}

// Key returns the identity of the song
func (s *Song) Key() SongKey {
	return SongKey{Name: s.SongName, Hash: s.Hash}
}

// Bucket is a titled, ordered list of songs
type Bucket struct {
	ID    BucketID `json:"-"`
	Title string   `json:"playlistTitle"`
	Songs []Song   `json:"songs"`
}

// findSong returns the song with the given identity, or nil
func (b *Bucket) findSong(key SongKey) *Song {
	for i := range b.Songs {
		if b.Songs[i].SongName == key.Name && b.Songs[i].Hash == key.Hash {
			return &b.Songs[i]
		}
	}
	return nil
}

// Collection holds all 90 buckets of one pass.
//
// A song is assigned to a bucket by its first difficulty and keeps that
// assignment for every later difficulty, whatever they classify as.
type Collection struct {
	buckets  [BucketCount]Bucket
	assigned map[SongKey]BucketID
	entries  int
}

// NewCollection creates the full, empty bucket grid
func NewCollection() *Collection {
	c := &Collection{assigned: make(map[SongKey]BucketID)}
	for _, id := range AllBucketIDs() {
		c.buckets[id.Index()] = Bucket{ID: id, Title: id.Title(), Songs: []Song{}}
	}
	return c
}

// Upsert adds a difficulty to a song. A song seen before goes to the bucket it
// was first assigned to; otherwise it is appended to the bucket given by id.
// It returns the bucket the entry landed in.
func (c *Collection) Upsert(id BucketID, key SongKey, d Difficulty) (BucketID, error) {
	if !id.Valid() {
		return BucketID{}, fmt.Errorf("unknown bucket %+v", id)
	}
	if first, ok := c.assigned[key]; ok {
		id = first
	}

	bucket := &c.buckets[id.Index()]
	if song := bucket.findSong(key); song != nil {
		song.Difficulties = append(song.Difficulties, d)
	} else {
		bucket.Songs = append(bucket.Songs, Song{
			SongName:     key.Name,
			Difficulties: []Difficulty{d},
			Hash:         key.Hash,
		})
		c.assigned[key] = id
	}
	c.entries++
	return id, nil
}

// Bucket returns the bucket with the given id
func (c *Collection) Bucket(id BucketID) *Bucket {
	if !id.Valid() {
		return nil
	}
	return &c.buckets[id.Index()]
}

// Buckets returns every bucket in index order
func (c *Collection) Buckets() []*Bucket {
	out := make([]*Bucket, 0, BucketCount)
	for i := range c.buckets {
		out = append(out, &c.buckets[i])
	}
	return out
}

// Assignment returns the bucket a song was first assigned to
func (c *Collection) Assignment(key SongKey) (BucketID, bool) {
	id, ok := c.assigned[key]
	return id, ok
}

// Len is the number of difficulty entries stored
func (c *Collection) Len() int {
	return c.entries
}

// Songs is the number of distinct song entries stored
func (c *Collection) Songs() int {
	return len(c.assigned)
}
