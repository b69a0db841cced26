package ddns

// Catalog is the ordered collection of provider records built during a
// configuration load. It is constructed by an explicit load call and
// passed to the update engine; there is no package-level instance.
//
// Records are inserted at the head, so iteration yields the most
// recently inserted record first. That order is an implementation
// detail, not a contract: callers must not assume it matches the
// configuration order across reloads.
type Catalog struct {
	records []*Record
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Insert places a record at the head of the catalog.
func (c *Catalog) Insert(r *Record) {
	c.records = append([]*Record{r}, c.records...)
}

// Len returns the number of records in the catalog.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Iter returns a fresh cursor over the catalog. Every call yields an
// independent iterator, so multiple traversals may run concurrently as
// long as the catalog itself is not being drained or repopulated.
func (c *Catalog) Iter() *Iterator {
	return &Iterator{records: c.records}
}

// Drain releases every record's derived credential material and empties
// the catalog. A reload must Drain before repopulating so that
// published records are never mutated in place.
func (c *Catalog) Drain() {
	for _, r := range c.records {
		r.Creds.clear()
	}
	c.records = nil
}

// Iterator is a forward cursor over a catalog. The zero value is empty.
type Iterator struct {
	records []*Record
	pos     int
}

// Next returns the next record, or nil past the end.
func (it *Iterator) Next() *Record {
	if it.pos >= len(it.records) {
		return nil
	}
	r := it.records[it.pos]
	it.pos++
	return r
}
