package dashboard

// Registry assigns stable, append-only indices to buckets per group type.
// It is request-local and not safe for concurrent use.
type Registry struct {
	index   map[GroupType]map[BucketKey]int
	buckets map[GroupType][]Bucket
	trends  map[GroupType][]Trend
}

// NewRegistry constructs a registry pre-populated with seeds in order.
func NewRegistry(seeds []Seed) *Registry {
	r := &Registry{
		index:   map[GroupType]map[BucketKey]int{},
		buckets: map[GroupType][]Bucket{},
		trends:  map[GroupType][]Trend{},
	}
	for _, gt := range TrackedGroupTypes() {
		r.index[gt] = map[BucketKey]int{}
	}
	for _, seed := range seeds {
		if seed.Trend == "" {
			seed.Trend = TrendNeutral
		}
		r.add(seed.GroupType, seed.Bucket, seed.Trend)
	}
	return r
}

// Index returns the bucket's index, appending it when first seen.
// A bucket already present keeps its index and its original label.
func (r *Registry) Index(gt GroupType, bucket Bucket) int {
	if idx, ok := r.index[gt][bucket.Key]; ok {
		return idx
	}
	return r.add(gt, bucket, TrendNeutral)
}

// add appends one bucket unless its key already exists.
func (r *Registry) add(gt GroupType, bucket Bucket, trend Trend) int {
	keys, ok := r.index[gt]
	if !ok {
		keys = map[BucketKey]int{}
		r.index[gt] = keys
	}
	if idx, ok := keys[bucket.Key]; ok {
		return idx
	}
	idx := len(r.buckets[gt])
	keys[bucket.Key] = idx
	r.buckets[gt] = append(r.buckets[gt], bucket)
	r.trends[gt] = append(r.trends[gt], trend)
	return idx
}

// Len returns the number of buckets registered for one group type.
func (r *Registry) Len(gt GroupType) int {
	return len(r.buckets[gt])
}

// Buckets returns one group type's buckets in index order.
func (r *Registry) Buckets(gt GroupType) []Bucket {
	return append([]Bucket(nil), r.buckets[gt]...)
}

// Trend returns the trend flag for one bucket index.
func (r *Registry) Trend(gt GroupType, idx int) Trend {
	trends := r.trends[gt]
	if idx < 0 || idx >= len(trends) {
		return TrendNeutral
	}
	return trends[idx]
}
