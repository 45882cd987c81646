package lib

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/vibecoderx/QuakeTrack/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store owns the ordered list of monitored cities and persists it as a single
// blob under a fixed key. In-memory state is authoritative: a failed write is
// logged and retried implicitly by the next mutation, which persists the whole
// list again.
type Store struct {
	log *zap.Logger
	db  *gorm.DB

	mu     sync.Mutex
	cities models.Cities
}

func NewStore(lc fx.Lifecycle, log *zap.Logger, db *gorm.DB) *Store {
	s := &Store{log: log, db: db}
	s.Load()
	return s
}

// Load reads the persisted blob. Any failure, including a corrupted blob,
// resets to an empty list; stored state is never worth crashing over.
func (s *Store) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = models.Cities{}

	blob := models.StoredBlob{}
	tx := s.db.Where("key = ?", models.CitiesStorageKey).First(&blob)
	if err := tx.Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Sugar().Infow("Failed to read persisted cities, starting empty", "err", err)
		}
		return
	}

	var cities models.Cities
	if err := json.Unmarshal(blob.Value, &cities); err != nil {
		s.log.Sugar().Infow("Discarding corrupted cities blob", "err", err)
		return
	}
	s.cities = cities
}

// Cities returns a snapshot of the current list in insertion order.
func (s *Store) Cities() models.Cities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(models.Cities{}, s.cities...)
}

// Add appends the city. The caller supplies the identifier.
func (s *Store) Add(city models.City) models.Cities {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = append(s.cities, city)
	s.persist()
	return append(models.Cities{}, s.cities...)
}

// Update replaces the entry whose identifier matches, preserving its position.
// A miss is a no-op.
func (s *Store) Update(city models.City) (models.Cities, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cities {
		if s.cities[i].ID == city.ID {
			s.cities[i] = city
			s.persist()
			return append(models.Cities{}, s.cities...), true
		}
	}
	return append(models.Cities{}, s.cities...), false
}

// DeleteAt removes the entries at the given positions in the current list,
// preserving the relative order of the remainder. Out-of-range positions are
// ignored.
func (s *Store) DeleteAt(indices []int) models.Cities {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[int]bool, len(indices))
	for _, i := range indices {
		drop[i] = true
	}

	kept := make(models.Cities, 0, len(s.cities))
	for i, city := range s.cities {
		if !drop[i] {
			kept = append(kept, city)
		}
	}
	s.cities = kept
	s.persist()
	return append(models.Cities{}, s.cities...)
}

func (s *Store) persist() {
	encoded, err := json.Marshal(s.cities)
	if err != nil {
		s.log.Sugar().Infow("Failed to encode cities", "err", err)
		return
	}

	blob := models.StoredBlob{Key: models.CitiesStorageKey, Value: encoded}
	tx := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&blob)
	if err := tx.Error; err != nil {
		s.log.Sugar().Infow("Failed to persist cities, keeping in-memory state", "err", err)
	}
}
