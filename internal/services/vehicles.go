package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/metrics"
	"github.com/dmitrijs2005/vehiclereg/internal/models"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/repomanager"
)

// VehicleService owns the vehicle collection and the working set, the
// subset most recently loaded by ListByOwner or ListAll.
type VehicleService struct {
	mu      sync.Mutex
	store   storage
	log     logging.Logger
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string

	working []models.Vehicle
}

// NewVehicleService binds the service to db through repos. m may be nil.
func NewVehicleService(db Database, repos repomanager.RepositoryManager, log logging.Logger, m *metrics.Metrics) *VehicleService {
	return &VehicleService{
		store:   storage{db: db, repos: repos},
		log:     log.With("component", "vehicles"),
		metrics: m,
		now:     time.Now,
		newID:   newID,
	}
}

func (s *VehicleService) load(ctx context.Context) ([]models.Vehicle, error) {
	var all []models.Vehicle
	if _, err := loadJSON(ctx, s.store.repo(), keyVehicles, &all); err != nil {
		return nil, err
	}
	return all, nil
}

// replaceWorking installs vs as the working set and returns a copy for the
// caller. Must be called with mu held.
func (s *VehicleService) replaceWorking(vs []models.Vehicle) []models.Vehicle {
	s.working = vs
	s.metrics.SetWorkingSet(s.statsLocked())
	return cloneAll(vs)
}

// ListByOwner returns the vehicles of userID in insertion order and makes
// them the working set. On a read failure the working set is emptied.
func (s *VehicleService) ListByOwner(ctx context.Context, userID string) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		s.log.Error(ctx, "list vehicles failed", "user_id", userID, "error", err)
		s.replaceWorking(nil)
		return []models.Vehicle{}, err
	}

	owned := make([]models.Vehicle, 0, len(all))
	for _, v := range all {
		if v.UserID == userID {
			owned = append(owned, v)
		}
	}
	return s.replaceWorking(owned), nil
}

// ListAll returns every vehicle and makes the full collection the working
// set. On a read failure the working set is emptied.
func (s *VehicleService) ListAll(ctx context.Context) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		s.log.Error(ctx, "list all vehicles failed", "error", err)
		s.replaceWorking(nil)
		return []models.Vehicle{}, err
	}
	if all == nil {
		all = []models.Vehicle{}
	}
	return s.replaceWorking(all), nil
}

// Register validates in, stores a new pending vehicle and appends it to the
// working set. Plates are unique across all owners.
func (s *VehicleService) Register(ctx context.Context, in models.VehicleInput) (models.Vehicle, error) {
	if strings.TrimSpace(in.PlateNumber) == "" {
		s.metrics.ObserveRegistration(metrics.ResultRejected)
		return models.Vehicle{}, fmt.Errorf("%w: plate number is required", common.ErrValidation)
	}

	now := s.now().UTC()
	if !models.ValidYear(in.Year, now) {
		s.metrics.ObserveRegistration(metrics.ResultRejected)
		return models.Vehicle{}, fmt.Errorf("%w: %d not in [%d, %d]", common.ErrInvalidYear, in.Year, models.MinYear, now.Year()+1)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		s.metrics.ObserveRegistration(metrics.ResultError)
		return models.Vehicle{}, err
	}
	for _, v := range all {
		if v.PlateNumber == in.PlateNumber {
			s.metrics.ObserveRegistration(metrics.ResultRejected)
			return models.Vehicle{}, fmt.Errorf("%w: %s", common.ErrDuplicatePlate, in.PlateNumber)
		}
	}

	v := models.NewVehicle(s.newID(), in, now)
	if err := saveJSON(ctx, s.store.repo(), keyVehicles, append(all, v)); err != nil {
		s.metrics.ObserveRegistration(metrics.ResultError)
		s.log.Error(ctx, "register vehicle failed", "plate", in.PlateNumber, "error", err)
		return models.Vehicle{}, err
	}

	s.working = append(s.working, v)
	s.metrics.ObserveRegistration(metrics.ResultOK)
	s.metrics.SetWorkingSet(s.statsLocked())
	s.log.Info(ctx, "vehicle registered", "id", v.ID, "plate", v.PlateNumber, "user_id", v.UserID)
	return v.Clone(), nil
}

// SetStatus moves a pending vehicle to approved or rejected and stamps the
// verification time. Approved and rejected are final.
func (s *VehicleService) SetStatus(ctx context.Context, id string, status models.Status) (models.Vehicle, error) {
	if !status.IsTerminal() {
		return models.Vehicle{}, fmt.Errorf("%w: %q", common.ErrInvalidStatus, status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return models.Vehicle{}, err
	}

	idx := indexOf(all, id)
	if idx < 0 {
		return models.Vehicle{}, fmt.Errorf("%w: vehicle %s", common.ErrNotFound, id)
	}
	if all[idx].Status.IsTerminal() {
		return models.Vehicle{}, fmt.Errorf("%w: vehicle %s is %s", common.ErrAlreadyVerified, id, all[idx].Status)
	}

	at := s.now().UTC()
	all[idx].Status = status
	all[idx].VerificationDate = &at

	if err := saveJSON(ctx, s.store.repo(), keyVehicles, all); err != nil {
		s.log.Error(ctx, "status change failed", "id", id, "status", status, "error", err)
		return models.Vehicle{}, err
	}

	if w := indexOf(s.working, id); w >= 0 {
		s.working[w] = all[idx].Clone()
	}
	s.metrics.ObserveTransition(status)
	s.metrics.SetWorkingSet(s.statsLocked())
	s.log.Info(ctx, "vehicle verified", "id", id, "status", status)
	return all[idx].Clone(), nil
}

func (s *VehicleService) Approve(ctx context.Context, id string) (models.Vehicle, error) {
	return s.SetStatus(ctx, id, models.StatusApproved)
}

func (s *VehicleService) Reject(ctx context.Context, id string) (models.Vehicle, error) {
	return s.SetStatus(ctx, id, models.StatusRejected)
}

// FindByID looks id up in the working set only.
func (s *VehicleService) FindByID(id string) (models.Vehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.working, id); i >= 0 {
		return s.working[i].Clone(), true
	}
	return models.Vehicle{}, false
}

// FindPending returns the pending vehicles of the working set.
func (s *VehicleService) FindPending() []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Vehicle{}
	for _, v := range s.working {
		if v.Status == models.StatusPending {
			out = append(out, v.Clone())
		}
	}
	return out
}

// SearchByPlate returns working-set vehicles whose plate contains fragment,
// ignoring case.
func (s *VehicleService) SearchByPlate(fragment string) []models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()

	needle := strings.ToLower(fragment)
	out := []models.Vehicle{}
	for _, v := range s.working {
		if strings.Contains(strings.ToLower(v.PlateNumber), needle) {
			out = append(out, v.Clone())
		}
	}
	return out
}

// Statistics aggregates the working set.
func (s *VehicleService) Statistics() models.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.statsLocked()
}

func (s *VehicleService) statsLocked() models.Stats {
	st := models.Stats{
		Total:  len(s.working),
		ByMake: make(map[string]int),
		ByYear: make(map[string]int),
	}
	for _, v := range s.working {
		switch v.Status {
		case models.StatusPending:
			st.Pending++
		case models.StatusApproved:
			st.Approved++
		case models.StatusRejected:
			st.Rejected++
		}
		st.ByMake[v.Make]++
		st.ByYear[strconv.Itoa(v.Year)]++
	}
	return st
}

// SeedDemoVehicles writes three sample vehicles when the collection has
// never been stored. It reports whether anything was written.
func (s *VehicleService) SeedDemoVehicles(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.store.repo().Get(ctx, keyVehicles)
	if err != nil {
		return false, storageErr("read "+keyVehicles, err)
	}
	if raw != nil {
		return false, nil
	}

	now := s.now().UTC()
	verified := now
	demo := []models.Vehicle{
		models.NewVehicle(s.newID(), models.VehicleInput{
			UserID: "user1", PlateNumber: "ABC-123-XY", Make: "Toyota", Model: "Camry",
			Year: 2020, Color: "Blue", VIN: "JT2BF28K9X0123456",
			Owner: "John Doe", Documents: []string{"doc1.pdf", "doc2.pdf"},
		}, now),
		models.NewVehicle(s.newID(), models.VehicleInput{
			UserID: "user2", PlateNumber: "XYZ-456-AB", Make: "Honda", Model: "Accord",
			Year: 2019, Color: "Red", VIN: "JHMCF36X8XS123456",
			Owner: "Jane Smith", Documents: []string{"doc3.pdf"},
		}, now),
		models.NewVehicle(s.newID(), models.VehicleInput{
			UserID: "user3", PlateNumber: "DEF-789-CD", Make: "Ford", Model: "F-150",
			Year: 2021, Color: "White", VIN: "1FTFW1ET5MFC12345",
			Owner: "Bob Johnson",
		}, now),
	}
	demo[2].Status = models.StatusApproved
	demo[2].VerificationDate = &verified

	if err := saveJSON(ctx, s.store.repo(), keyVehicles, demo); err != nil {
		return false, err
	}
	s.log.Info(ctx, "demo vehicles seeded", "count", len(demo))
	return true, nil
}

func indexOf(vs []models.Vehicle, id string) int {
	for i := range vs {
		if vs[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(vs []models.Vehicle) []models.Vehicle {
	out := make([]models.Vehicle, len(vs))
	for i, v := range vs {
		out[i] = v.Clone()
	}
	return out
}
