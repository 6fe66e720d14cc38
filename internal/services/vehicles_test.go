package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/dmitrijs2005/vehiclereg/internal/common"
	"github.com/dmitrijs2005/vehiclereg/internal/metrics"
	"github.com/dmitrijs2005/vehiclereg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func input(user, plate, brand string, year int) models.VehicleInput {
	return models.VehicleInput{
		UserID:      user,
		PlateNumber: plate,
		Make:        brand,
		Model:       "Model",
		Year:        year,
		Color:       "Blue",
		VIN:         "VIN-" + plate,
	}
}

func TestRegister_CreatesPendingVehicle(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)
	ctx := context.Background()

	v, err := s.Register(ctx, input("u1", "ABC-1", "Toyota", 2020))
	require.NoError(t, err)
	assert.Equal(t, "veh-1", v.ID)
	assert.Equal(t, models.StatusPending, v.Status)
	assert.Nil(t, v.VerificationDate)
	assert.Equal(t, testNow, v.RegistrationDate)
	assert.Equal(t, models.UnknownOwner, v.Owner)
	assert.Equal(t, models.PlaceholderImageURL, v.ImageURL)

	got, ok := s.FindByID(v.ID)
	require.True(t, ok)
	assert.Equal(t, v, got)
}

func TestRegister_YearBounds(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		wantErr error
	}{
		{name: "before first year", year: 1899, wantErr: common.ErrInvalidYear},
		{name: "first year", year: 1900},
		{name: "next model year", year: testNow.Year() + 1},
		{name: "two years ahead", year: testNow.Year() + 2, wantErr: common.ErrInvalidYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, repos := openTestDB(t)
			s := newTestVehicles(db, repos, nil)

			_, err := s.Register(context.Background(), input("u1", "P-1", "Ford", tt.year))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRegister_DuplicatePlateAcrossOwners(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)
	ctx := context.Background()

	_, err := s.Register(ctx, input("u1", "ABC-1", "Toyota", 2020))
	require.NoError(t, err)

	_, err = s.Register(ctx, input("u2", "ABC-1", "Honda", 2019))
	require.ErrorIs(t, err, common.ErrDuplicatePlate)

	// plates compare case-sensitively
	_, err = s.Register(ctx, input("u2", "abc-1", "Honda", 2019))
	require.NoError(t, err)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRegister_EmptyPlate(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)

	_, err := s.Register(context.Background(), input("u1", " ", "Ford", 2020))
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestRegister_WriteFailure(t *testing.T) {
	db, repos := openTestDB(t)
	faulty, f := newFaulty(repos)
	s := newTestVehicles(db, faulty, nil)
	ctx := context.Background()

	f.set = errDisk
	_, err := s.Register(ctx, input("u1", "ABC-1", "Toyota", 2020))
	require.ErrorIs(t, err, common.ErrStorageFailure)
	assert.Empty(t, s.FindPending())

	f.set = nil
	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListByOwner_ScopesWorkingSet(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)
	ctx := context.Background()

	a, err := s.Register(ctx, input("u1", "A-1", "Toyota", 2020))
	require.NoError(t, err)
	b, err := s.Register(ctx, input("u2", "B-1", "Honda", 2019))
	require.NoError(t, err)
	c, err := s.Register(ctx, input("u1", "A-2", "Ford", 2021))
	require.NoError(t, err)

	owned, err := s.ListByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, a.ID, owned[0].ID)
	assert.Equal(t, c.ID, owned[1].ID)

	_, ok := s.FindByID(b.ID)
	assert.False(t, ok, "other owner's vehicle must not be in the working set")

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	_, ok = s.FindByID(b.ID)
	assert.True(t, ok)

	none, err := s.ListByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
	assert.Equal(t, 0, s.Statistics().Total)
}

func TestList_ReadFailureEmptiesWorkingSet(t *testing.T) {
	db, repos := openTestDB(t)
	faulty, f := newFaulty(repos)
	s := newTestVehicles(db, faulty, nil)
	ctx := context.Background()

	_, err := s.Register(ctx, input("u1", "A-1", "Toyota", 2020))
	require.NoError(t, err)
	require.Equal(t, 1, s.Statistics().Total)

	f.get = errDisk
	all, err := s.ListAll(ctx)
	require.ErrorIs(t, err, common.ErrStorageFailure)
	assert.NotNil(t, all)
	assert.Empty(t, all)
	assert.Equal(t, 0, s.Statistics().Total)

	owned, err := s.ListByOwner(ctx, "u1")
	require.ErrorIs(t, err, errDisk)
	assert.NotNil(t, owned)
	assert.Empty(t, owned)
}

func TestList_CorruptDocument(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)
	ctx := context.Background()

	require.NoError(t, repos.KV(db).Set(ctx, keyVehicles, []byte(`{"broken"`)))

	all, err := s.ListAll(ctx)
	require.ErrorIs(t, err, common.ErrStorageFailure)
	assert.Empty(t, all)
}

func TestApproveAndReject(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)
	ctx := context.Background()

	a, err := s.Register(ctx, input("u1", "A-1", "Toyota", 2020))
	require.NoError(t, err)
	b, err := s.Register(ctx, input("u1", "B-1", "Honda", 2019))
	require.NoError(t, err)
	require.Len(t, s.FindPending(), 2)

	approved, err := s.Approve(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	require.NotNil(t, approved.VerificationDate)
	assert.Equal(t, testNow, *approved.VerificationDate)

	rejected, err := s.Reject(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.VerificationDate)

	assert.Empty(t, s.FindPending())

	got, ok := s.FindByID(a.ID)
	require.True(t, ok)
	assert.Equal(t, approved, got)

	// the stored collection carries the change too
	fresh := newTestVehicles(db, repos, nil)
	all, err := fresh.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, approved, all[0])
	assert.Equal(t, rejected, all[1])
}

func TestSetStatus_Errors(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)
	ctx := context.Background()

	v, err := s.Register(ctx, input("u1", "A-1", "Toyota", 2020))
	require.NoError(t, err)

	before, err := repos.KV(db).Get(ctx, keyVehicles)
	require.NoError(t, err)

	_, err = s.Approve(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = s.SetStatus(ctx, v.ID, models.StatusPending)
	require.ErrorIs(t, err, common.ErrInvalidStatus)
	_, err = s.SetStatus(ctx, v.ID, models.Status("archived"))
	require.ErrorIs(t, err, common.ErrInvalidStatus)

	after, err := repos.KV(db).Get(ctx, keyVehicles)
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed transitions must not touch storage")

	_, err = s.Approve(ctx, v.ID)
	require.NoError(t, err)
	_, err = s.Reject(ctx, v.ID)
	require.ErrorIs(t, err, common.ErrAlreadyVerified)
	_, err = s.Approve(ctx, v.ID)
	require.ErrorIs(t, err, common.ErrAlreadyVerified)
}

func TestSetStatus_WriteFailureKeepsWorkingSet(t *testing.T) {
	db, repos := openTestDB(t)
	faulty, f := newFaulty(repos)
	s := newTestVehicles(db, faulty, nil)
	ctx := context.Background()

	v, err := s.Register(ctx, input("u1", "A-1", "Toyota", 2020))
	require.NoError(t, err)

	f.set = errDisk
	_, err = s.Approve(ctx, v.ID)
	require.ErrorIs(t, err, common.ErrStorageFailure)

	got, ok := s.FindByID(v.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.VerificationDate)
}

func TestSearchByPlate(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)
	ctx := context.Background()

	for _, p := range []string{"ABC-123", "xyz-456", "QABCX"} {
		_, err := s.Register(ctx, input("u1", p, "Ford", 2020))
		require.NoError(t, err)
	}

	plates := func(vs []models.Vehicle) []string {
		out := make([]string, 0, len(vs))
		for _, v := range vs {
			out = append(out, v.PlateNumber)
		}
		return out
	}

	assert.Equal(t, []string{"ABC-123", "QABCX"}, plates(s.SearchByPlate("abc")))
	assert.Equal(t, []string{"xyz-456"}, plates(s.SearchByPlate("XYZ")))
	assert.Empty(t, s.SearchByPlate("nope"))
	assert.Len(t, s.SearchByPlate(""), 3)
}

func TestStatistics(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)
	ctx := context.Background()

	specs := []struct {
		plate string
		brand string
		year  int
		to    models.Status
	}{
		{"P-1", "Toyota", 2020, models.StatusPending},
		{"P-2", "Toyota", 2020, models.StatusPending},
		{"P-3", "Honda", 2019, models.StatusPending},
		{"P-4", "Honda", 2019, models.StatusApproved},
		{"P-5", "Ford", 2021, models.StatusApproved},
		{"P-6", "Ford", 2020, models.StatusRejected},
	}
	for _, sp := range specs {
		v, err := s.Register(ctx, input("u1", sp.plate, sp.brand, sp.year))
		require.NoError(t, err)
		if sp.to != models.StatusPending {
			_, err = s.SetStatus(ctx, v.ID, sp.to)
			require.NoError(t, err)
		}
	}

	st := s.Statistics()
	assert.Equal(t, 6, st.Total)
	assert.Equal(t, 3, st.Pending)
	assert.Equal(t, 2, st.Approved)
	assert.Equal(t, 1, st.Rejected)
	assert.Equal(t, map[string]int{"Toyota": 2, "Honda": 2, "Ford": 2}, st.ByMake)
	assert.Equal(t, map[string]int{"2020": 3, "2019": 2, "2021": 1}, st.ByYear)

	sum := 0
	for _, n := range st.ByMake {
		sum += n
	}
	assert.Equal(t, st.Total, sum)
}

func TestWorkingSetReturnsCopies(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)
	ctx := context.Background()

	in := input("u1", "A-1", "Toyota", 2020)
	in.Documents = []string{"a.pdf"}
	v, err := s.Register(ctx, in)
	require.NoError(t, err)

	v.Documents[0] = "changed.pdf"
	got, _ := s.FindByID(v.ID)
	assert.Equal(t, []string{"a.pdf"}, got.Documents)
}

func TestVehicles_RoundTripAcrossInstances(t *testing.T) {
	db, repos := openTestDB(t)
	ctx := context.Background()

	first := newTestVehicles(db, repos, nil)
	in := input("u1", "A-1", "Toyota", 2020)
	in.Owner = "Jane"
	in.ImageURL = "file:///img.png"
	in.Documents = []string{"a.pdf", "b.pdf"}
	_, err := first.Register(ctx, in)
	require.NoError(t, err)
	b, err := first.Register(ctx, input("u2", "B-1", "Honda", 2019))
	require.NoError(t, err)
	_, err = first.Reject(ctx, b.ID)
	require.NoError(t, err)

	want, err := first.ListAll(ctx)
	require.NoError(t, err)

	second := newTestVehicles(db, repos, nil)
	got, err := second.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSeedDemoVehicles(t *testing.T) {
	db, repos := openTestDB(t)
	s := newTestVehicles(db, repos, nil)
	ctx := context.Background()

	seeded, err := s.SeedDemoVehicles(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = s.SeedDemoVehicles(ctx)
	require.NoError(t, err)
	assert.False(t, seeded)

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ABC-123-XY", all[0].PlateNumber)
	assert.Equal(t, []string{"doc1.pdf", "doc2.pdf"}, all[0].Documents)

	st := s.Statistics()
	assert.Equal(t, 2, st.Pending)
	assert.Equal(t, 1, st.Approved)
	require.NotNil(t, all[2].VerificationDate)
	assert.Nil(t, all[0].VerificationDate)

	_, err = s.Register(ctx, input("u9", "XYZ-456-AB", "Kia", 2022))
	require.ErrorIs(t, err, common.ErrDuplicatePlate)
}

func TestVehicleMetrics(t *testing.T) {
	db, repos := openTestDB(t)
	m, err := metrics.New()
	require.NoError(t, err)
	s := newTestVehicles(db, repos, m)
	ctx := context.Background()

	a, err := s.Register(ctx, input("u1", "A-1", "Toyota", 2020))
	require.NoError(t, err)
	b, err := s.Register(ctx, input("u1", "B-1", "Toyota", 2020))
	require.NoError(t, err)
	_, err = s.Register(ctx, input("u1", "A-1", "Toyota", 2020))
	require.Error(t, err)
	_, err = s.Approve(ctx, a.ID)
	require.NoError(t, err)
	_, err = s.Reject(ctx, b.ID)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, m.WriteText(&buf))
	out := buf.String()
	assert.Contains(t, out, `vehiclereg_vehicles_registrations_total{result="ok"} 2`)
	assert.Contains(t, out, `vehiclereg_vehicles_registrations_total{result="rejected"} 1`)
	assert.Contains(t, out, `vehiclereg_vehicles_status_transitions_total{status="approved"} 1`)
	assert.Contains(t, out, `vehiclereg_vehicles_status_transitions_total{status="rejected"} 1`)
	assert.Contains(t, out, `vehiclereg_vehicles_working_set{status="pending"} 0`)
}

func TestScenario_SignupRegisterApprove(t *testing.T) {
	db, repos := openTestDB(t)
	ctx := context.Background()
	ids := newTestIdentity(db, repos, nil)
	vs := newTestVehicles(db, repos, nil)

	acc, err := ids.SignUp(ctx, "a@b.com", "secret1", "A B")
	require.NoError(t, err)

	_, err = vs.ListByOwner(ctx, acc.ID)
	require.NoError(t, err)

	v, err := vs.Register(ctx, input(acc.ID, "ABC-1", "Toyota", 2020))
	require.NoError(t, err)

	pending := vs.FindPending()
	require.Len(t, pending, 1)
	assert.Equal(t, v.ID, pending[0].ID)

	_, err = vs.Approve(ctx, v.ID)
	require.NoError(t, err)

	st := vs.Statistics()
	assert.Equal(t, 1, st.Approved)
	assert.Equal(t, 0, st.Pending)
}
