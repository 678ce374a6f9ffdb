package hash

import (
	"sync"

	"coredb/storage/bufferpool"
	"coredb/storage/page"

	"github.com/sirupsen/logrus"
)

// Table is a persistent extendible hash index over (K, V). A single
// mutex serializes writers during insert/delete; lookups take only
// page read-latches via guards, releasing a parent guard before
// acquiring its child (latch crabbing).
type Table[K comparable, V any] struct {
	bpm *bufferpool.Pool

	keyCodec Codec[K]
	valCodec Codec[V]
	cmp      Comparator[K]

	headerPageID      int64
	headerMaxDepth    uint32
	directoryMaxDepth uint32
	bucketMaxSize     int

	hashFn func(K) uint32

	writeMu sync.Mutex
}

// New constructs an index backed by bpm. bucketMaxSize of 0 selects
// the page-derived default ((page.Size-8)/entrySize). Keys hash via
// the package's xxhash-based Hash; use NewWithHash to supply a
// different hash function (for example, an identity hash over small
// integer keys for deterministic split/merge testing).
func New[K comparable, V any](bpm *bufferpool.Pool, keyCodec Codec[K], valCodec Codec[V], cmp Comparator[K],
	headerMaxDepth, directoryMaxDepth uint32, bucketMaxSize int) (*Table[K, V], error) {
	return NewWithHash(bpm, keyCodec, valCodec, cmp, headerMaxDepth, directoryMaxDepth, bucketMaxSize,
		func(key K) uint32 { return Hash(keyCodec, key) })
}

// NewWithHash is New with an explicit hash function, overriding the
// package default for callers that need control over bucket
// placement — most notably tests that want reproducible split points.
func NewWithHash[K comparable, V any](bpm *bufferpool.Pool, keyCodec Codec[K], valCodec Codec[V], cmp Comparator[K],
	headerMaxDepth, directoryMaxDepth uint32, bucketMaxSize int, hashFn func(K) uint32) (*Table[K, V], error) {

	pageID, guard := bpm.NewPageGuarded()
	if guard == nil {
		return nil, bufferpool.ErrNotResident
	}
	wg := guard.UpgradeWrite()
	newHeaderPage(wg.Data()).init(headerMaxDepth)
	wg.Drop()

	return &Table[K, V]{
		bpm:               bpm,
		keyCodec:          keyCodec,
		valCodec:          valCodec,
		cmp:               cmp,
		headerPageID:      pageID,
		headerMaxDepth:    headerMaxDepth,
		directoryMaxDepth: directoryMaxDepth,
		bucketMaxSize:     bucketMaxSize,
		hashFn:            hashFn,
	}, nil
}

func (t *Table[K, V]) hash(key K) uint32 { return t.hashFn(key) }

func (t *Table[K, V]) eq(a, b []byte) bool {
	return t.cmp(t.keyCodec.Decode(a), t.keyCodec.Decode(b)) == 0
}

// GetValue looks up key, following header -> directory -> bucket.
func (t *Table[K, V]) GetValue(key K) (V, bool) {
	var zero V
	hash := t.hash(key)

	hg := t.bpm.FetchPageRead(t.headerPageID)
	if hg == nil {
		return zero, false
	}
	hp := newHeaderPage(hg.Data())
	dirIdx := hp.hashToDirectoryIndex(hash)
	dirPageID := hp.directoryPageID(dirIdx)
	hg.Drop()
	if dirPageID == page.InvalidID {
		return zero, false
	}

	dg := t.bpm.FetchPageRead(dirPageID)
	if dg == nil {
		return zero, false
	}
	dp := newDirectoryPage(dg.Data())
	bucketIdx := dp.hashToBucketIndex(hash)
	bucketPageID := dp.bucketPageID(bucketIdx)
	dg.Drop()
	if bucketPageID == page.InvalidID {
		return zero, false
	}

	bg := t.bpm.FetchPageRead(bucketPageID)
	if bg == nil {
		return zero, false
	}
	defer bg.Drop()
	bp := newBucketPage(bg.Data(), t.keyCodec.Size, t.valCodec.Size)

	keyBytes := make([]byte, t.keyCodec.Size)
	t.keyCodec.Encode(key, keyBytes)
	valBytes, ok := bp.lookup(keyBytes, t.eq)
	if !ok {
		return zero, false
	}
	return t.valCodec.Decode(valBytes), true
}

// GlobalDepth returns the global depth of the directory page that key
// hashes to, or false if no such directory page has been allocated.
func (t *Table[K, V]) GlobalDepth(key K) (uint32, bool) {
	dp, drop, ok := t.directoryForKey(key)
	if !ok {
		return 0, false
	}
	defer drop()
	return dp.globalDepth(), true
}

// LocalDepth returns the local depth of the bucket slot that key
// hashes to, or false if no such directory page has been allocated.
func (t *Table[K, V]) LocalDepth(key K) (uint8, bool) {
	dp, drop, ok := t.directoryForKey(key)
	if !ok {
		return 0, false
	}
	defer drop()
	return dp.localDepth(dp.hashToBucketIndex(t.hash(key))), true
}

// directoryForKey fetches (read-latched) the directory page key
// resolves to via the header page. The caller must call drop exactly
// once when done with dp.
func (t *Table[K, V]) directoryForKey(key K) (dp directoryPage, drop func(), ok bool) {
	hash := t.hash(key)

	hg := t.bpm.FetchPageRead(t.headerPageID)
	if hg == nil {
		return directoryPage{}, nil, false
	}
	hp := newHeaderPage(hg.Data())
	dirPageID := hp.directoryPageID(hp.hashToDirectoryIndex(hash))
	hg.Drop()
	if dirPageID == page.InvalidID {
		return directoryPage{}, nil, false
	}

	dg := t.bpm.FetchPageRead(dirPageID)
	if dg == nil {
		return directoryPage{}, nil, false
	}
	return newDirectoryPage(dg.Data()), dg.Drop, true
}

// Insert rejects duplicate keys, splitting buckets (and growing the
// directory) as needed to make room. Returns false if key already
// exists or the index could not make room (directory at max depth).
func (t *Table[K, V]) Insert(key K, value V) bool {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, exists := t.GetValue(key); exists {
		return false
	}

	hash := t.hash(key)

	hg := t.bpm.FetchPageWrite(t.headerPageID)
	if hg == nil {
		return false
	}
	hp := newHeaderPage(hg.Data())
	dirIdx := hp.hashToDirectoryIndex(hash)
	dirPageID := hp.directoryPageID(dirIdx)
	if dirPageID == page.InvalidID {
		var ok bool
		dirPageID, ok = t.newDirectory()
		if !ok {
			hg.Drop()
			return false
		}
		hp.setDirectoryPageID(dirIdx, dirPageID)
	}
	hg.Drop()

	dg := t.bpm.FetchPageWrite(dirPageID)
	if dg == nil {
		return false
	}
	defer dg.Drop()
	dp := newDirectoryPage(dg.Data())

	keyBytes := make([]byte, t.keyCodec.Size)
	t.keyCodec.Encode(key, keyBytes)
	valBytes := make([]byte, t.valCodec.Size)
	t.valCodec.Encode(value, valBytes)

	for {
		bucketIdx := dp.hashToBucketIndex(hash)
		bucketPageID := dp.bucketPageID(bucketIdx)

		bg := t.bpm.FetchPageWrite(bucketPageID)
		if bg == nil {
			return false
		}
		bp := newBucketPage(bg.Data(), t.keyCodec.Size, t.valCodec.Size)

		if bp.insert(keyBytes, valBytes) {
			bg.Drop()
			return true
		}
		bg.Drop()

		if !t.splitBucket(dp, bucketIdx) {
			t.mergeBucket(dp, bucketIdx)
			return false
		}
	}
}

// newDirectory allocates a directory page plus its first (sole)
// bucket page, returning the directory's page id.
func (t *Table[K, V]) newDirectory() (int64, bool) {
	dirPageID, dg := t.bpm.NewPageGuarded()
	if dg == nil {
		return 0, false
	}
	dwg := dg.UpgradeWrite()
	dp := newDirectoryPage(dwg.Data())
	dp.init(t.directoryMaxDepth)

	bucketPageID, bg := t.bpm.NewPageGuarded()
	if bg == nil {
		dwg.Drop()
		return 0, false
	}
	bwg := bg.UpgradeWrite()
	newBucketPage(bwg.Data(), t.keyCodec.Size, t.valCodec.Size).init(t.bucketMaxSize)
	bwg.Drop()

	dp.setLocalDepth(0, 0)
	dp.setBucketPageID(0, bucketPageID)
	dwg.Drop()

	return dirPageID, true
}

// splitBucket grows the directory if local_depth == global_depth
// (failing if already at directory_max_depth), allocates a sibling
// bucket, and redistributes entries between the two by bit
// local_depth (pre-increment). Returns false if no room could be
// made.
func (t *Table[K, V]) splitBucket(dp directoryPage, bucketIdx int) bool {
	globalDepth := dp.globalDepth()
	localDepth := uint32(dp.localDepth(bucketIdx))

	if localDepth == globalDepth {
		if globalDepth >= t.directoryMaxDepth {
			return false
		}
		dp.incrGlobalDepth()
		globalDepth++
	}

	bucket0PageID := dp.bucketPageID(bucketIdx)
	bucket1PageID, bg1 := t.bpm.NewPageGuarded()
	if bg1 == nil {
		return false
	}
	bw1 := bg1.UpgradeWrite()
	bucket1 := newBucketPage(bw1.Data(), t.keyCodec.Size, t.valCodec.Size)
	bucket1.init(t.bucketMaxSize)

	localDepthMask := dp.localDepthMask(bucketIdx)
	for i := 0; i < (1 << (globalDepth - localDepth)); i++ {
		tempIdx := (bucketIdx & int(localDepthMask)) + (i << localDepth)
		dp.setLocalDepth(tempIdx, uint8(localDepth+1))
		if i%2 == 0 {
			dp.setBucketPageID(tempIdx, bucket0PageID)
		} else {
			dp.setBucketPageID(tempIdx, bucket1PageID)
		}
	}

	bg0 := t.bpm.FetchPageWrite(bucket0PageID)
	if bg0 == nil {
		bw1.Drop()
		return false
	}
	bucket0 := newBucketPage(bg0.Data(), t.keyCodec.Size, t.valCodec.Size)

	bit := uint32(1) << localDepth
	// Move every entry whose hash has the new split bit set from
	// bucket0 to bucket1, then compact bucket0.
	i := 0
	for i < bucket0.size() {
		keyBytes := bucket0.keyAt(i)
		key := t.keyCodec.Decode(keyBytes)
		if t.hash(key)&bit != 0 {
			valBytes := bucket0.valueAt(i)
			bucket1.insert(append([]byte(nil), keyBytes...), append([]byte(nil), valBytes...))
			bucket0.removeAt(i)
			continue
		}
		i++
	}

	bg0.Drop()
	bw1.Drop()

	logrus.WithFields(logrus.Fields{"bucket_idx": bucketIdx, "local_depth": localDepth + 1}).
		Debug("hash: split bucket")
	return true
}

// mergeBucket merges bucketIdx's bucket with its split image if the
// image is empty and at the same local depth, shrinking the directory
// while every slot's local depth remains below the global depth.
// Recurses at the surviving bucket.
func (t *Table[K, V]) mergeBucket(dp directoryPage, bucketIdx int) {
	if dp.globalDepth() == 0 {
		return
	}
	if dp.localDepth(bucketIdx) == 0 {
		return
	}

	bucketPageID := dp.bucketPageID(bucketIdx)
	imageIdx := dp.splitImageIndex(bucketIdx)
	imagePageID := dp.bucketPageID(imageIdx)

	ig := t.bpm.FetchPageWrite(imagePageID)
	if ig == nil {
		return
	}
	image := newBucketPage(ig.Data(), t.keyCodec.Size, t.valCodec.Size)

	if image.size() != 0 || dp.localDepth(bucketIdx) != dp.localDepth(imageIdx) {
		ig.Drop()
		return
	}

	globalDepth := dp.globalDepth()
	dp.setLocalDepth(bucketIdx, dp.localDepth(bucketIdx)-1)
	localDepth := uint32(dp.localDepth(bucketIdx))
	localDepthMask := dp.localDepthMask(bucketIdx)
	for i := 0; i < (1 << (globalDepth - localDepth)); i++ {
		tempIdx := (bucketIdx & int(localDepthMask)) + (i << localDepth)
		if tempIdx == bucketIdx {
			continue
		}
		dp.setLocalDepth(tempIdx, uint8(localDepth))
		dp.setBucketPageID(tempIdx, bucketPageID)
	}
	ig.Drop()
	t.bpm.DeletePage(imagePageID)

	for dp.canShrink() {
		dp.decrGlobalDepth()
		bucketIdx = dp.hashToBucketIndex(uint32(bucketIdx))
	}

	logrus.WithFields(logrus.Fields{"bucket_idx": bucketIdx}).Debug("hash: merged bucket")
	t.mergeBucket(dp, bucketIdx)
}

// Remove deletes key, reporting whether it was present. An emptied
// bucket with a nonzero local depth triggers a merge attempt at its
// split image.
func (t *Table[K, V]) Remove(key K) bool {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	hash := t.hash(key)

	hg := t.bpm.FetchPageWrite(t.headerPageID)
	if hg == nil {
		return false
	}
	hp := newHeaderPage(hg.Data())
	dirPageID := hp.directoryPageID(hp.hashToDirectoryIndex(hash))
	hg.Drop()
	if dirPageID == page.InvalidID {
		return false
	}

	dg := t.bpm.FetchPageWrite(dirPageID)
	if dg == nil {
		return false
	}
	defer dg.Drop()
	dp := newDirectoryPage(dg.Data())

	bucketIdx := dp.hashToBucketIndex(hash)
	bucketPageID := dp.bucketPageID(bucketIdx)

	bg := t.bpm.FetchPageWrite(bucketPageID)
	if bg == nil {
		return false
	}
	bp := newBucketPage(bg.Data(), t.keyCodec.Size, t.valCodec.Size)

	keyBytes := make([]byte, t.keyCodec.Size)
	t.keyCodec.Encode(key, keyBytes)
	removed := bp.remove(keyBytes, t.eq)
	emptyNow := bp.size() == 0
	bg.Drop()

	if !removed {
		return false
	}
	if emptyNow && dp.localDepth(bucketIdx) != 0 {
		t.mergeBucket(dp, bucketIdx)
	}
	return true
}
