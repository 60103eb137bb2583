package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"bloodlink-api/internal/models"

	"github.com/golang/geo/s2"
)

// ErrUserNotFound is returned when the requested user does not exist.
var ErrUserNotFound = errors.New("service: user not found")

const earthRadiusKm = 6371

// compatibleDonors maps each recipient blood group to the set of donor
// groups that recipient may accept. O- is the universal donor, AB+ the
// universal recipient.
var compatibleDonors = map[models.BloodGroup][]models.BloodGroup{
	models.APositive:  {models.APositive, models.ANegative, models.OPositive, models.ONegative},
	models.ANegative:  {models.ANegative, models.ONegative},
	models.BPositive:  {models.BPositive, models.BNegative, models.OPositive, models.ONegative},
	models.BNegative:  {models.BNegative, models.ONegative},
	models.ABPositive: {models.APositive, models.ANegative, models.BPositive, models.BNegative, models.ABPositive, models.ABNegative, models.OPositive, models.ONegative},
	models.ABNegative: {models.ABNegative, models.ANegative, models.BNegative, models.ONegative},
	models.OPositive:  {models.OPositive, models.ONegative},
	models.ONegative:  {models.ONegative},
}

// AcceptableDonors returns the donor groups a recipient of group g may
// accept. The returned slice must not be mutated.
func AcceptableDonors(g models.BloodGroup) []models.BloodGroup {
	return compatibleDonors[g]
}

// RankedDonor pairs a compatible donor with its great-circle distance from
// the requester.
type RankedDonor struct {
	User       models.User
	DistanceKm float64
}

// UserLister provides read access to the user directory.
type UserLister interface {
	FindByID(ctx context.Context, id string) (models.User, bool, error)
	All(ctx context.Context) ([]models.User, error)
}

// MatchService ranks compatible donors by distance for a requesting user.
type MatchService struct {
	users UserLister
}

// NewMatchService creates a new match service.
func NewMatchService(users UserLister) *MatchService {
	return &MatchService{users: users}
}

// NearestDonors loads the requester and the full user pool, then returns
// the requester together with every compatible donor ranked by distance,
// nearest first.
func (s *MatchService) NearestDonors(ctx context.Context, userID string) (models.User, []RankedDonor, error) {
	requester, ok, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, nil, fmt.Errorf("service: load requester: %w", err)
	}
	if !ok {
		return models.User{}, nil, ErrUserNotFound
	}

	pool, err := s.users.All(ctx)
	if err != nil {
		return models.User{}, nil, fmt.Errorf("service: load donor pool: %w", err)
	}

	return requester, Rank(requester, pool), nil
}

// Rank filters pool down to donors whose blood group is acceptable to the
// requester, drops the requester itself and any candidate without resolved
// coordinates, and sorts the rest by great-circle distance ascending. Ties
// keep their original pool order.
func Rank(requester models.User, pool []models.User) []RankedDonor {
	if !requester.HasLocation() {
		return nil
	}

	acceptable := make(map[models.BloodGroup]bool, len(compatibleDonors[requester.BloodGroup]))
	for _, g := range compatibleDonors[requester.BloodGroup] {
		acceptable[g] = true
	}

	var ranked []RankedDonor
	for _, candidate := range pool {
		if candidate.ID == requester.ID || !candidate.HasLocation() || !acceptable[candidate.BloodGroup] {
			continue
		}
		ranked = append(ranked, RankedDonor{
			User: candidate,
			DistanceKm: distanceKm(
				requester.Location.Lat, requester.Location.Lon,
				candidate.Location.Lat, candidate.Location.Lon,
			),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}

// distanceKm is the great-circle distance between two coordinates on a
// sphere of Earth radius 6371 km.
func distanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	p := s2.LatLngFromDegrees(lat1, lon1)
	q := s2.LatLngFromDegrees(lat2, lon2)
	return p.Distance(q).Radians() * earthRadiusKm
}
