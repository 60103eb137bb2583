package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bloodlink-api/internal/models"
)

var (
	// ErrEmailExists is returned when registering an email that is already
	// taken, compared case-insensitively.
	ErrEmailExists = errors.New("service: email already exists")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("service: invalid credentials")

	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("service: invalid input")
)

// UserDirectory interface for dependency injection
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (models.User, bool, error)
	FindByID(ctx context.Context, id string) (models.User, bool, error)
	Insert(ctx context.Context, user models.User) (models.User, error)
	Update(ctx context.Context, user models.User) error
}

// AddressResolver interface for dependency injection
type AddressResolver interface {
	Resolve(ctx context.Context, rawAddress string) (models.GeoPoint, error)
}

// UserService contains the registration, login and profile logic. A user is
// only ever stored with a successfully geocoded address: when resolution
// fails, the whole operation is rejected and the directory left untouched.
type UserService struct {
	users    UserDirectory
	geocoder AddressResolver
}

// NewUserService creates a new user service.
func NewUserService(users UserDirectory, geocoder AddressResolver) *UserService {
	return &UserService{users: users, geocoder: geocoder}
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	BloodGroup string
	Phone      string
	Address    string
}

// Register geocodes the address and stores a new user.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.BloodGroup == "" || in.Address == "" {
		return models.User{}, fmt.Errorf("%w: name, email, password, bloodGroup and address are required", ErrValidation)
	}
	group := models.BloodGroup(in.BloodGroup)
	if !group.Valid() {
		return models.User{}, fmt.Errorf("%w: unknown blood group %q", ErrValidation, in.BloodGroup)
	}

	_, exists, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("service: check email: %w", err)
	}
	if exists {
		return models.User{}, ErrEmailExists
	}

	point, err := s.geocoder.Resolve(ctx, in.Address)
	if err != nil {
		return models.User{}, err
	}

	now := clock.Now().UTC()
	user := models.User{
		Name:       in.Name,
		Email:      in.Email,
		Password:   in.Password,
		BloodGroup: group,
		Phone:      in.Phone,
		AddressRaw: in.Address,
		Location:   &point,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.users.Insert(ctx, user)
	if err != nil {
		return models.User{}, fmt.Errorf("service: insert user: %w", err)
	}
	return created, nil
}

// Login checks the supplied credentials against the directory.
func (s *UserService) Login(ctx context.Context, email, password string) (models.User, error) {
	user, ok, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("service: find user: %w", err)
	}
	if !ok || user.Password != password {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns the user with the given identifier.
func (s *UserService) Get(ctx context.Context, id string) (models.User, error) {
	user, ok, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("service: find user: %w", err)
	}
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// UpdateInput carries a partial profile update; nil fields are untouched.
type UpdateInput struct {
	Name       *string
	Phone      *string
	BloodGroup *string
	Address    *string
}

// Update applies a field-level profile update. The address is re-geocoded
// only when its text actually changed; a failed resolution rejects the
// whole update.
func (s *UserService) Update(ctx context.Context, id string, in UpdateInput) (models.User, error) {
	user, ok, err := s.users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, fmt.Errorf("service: find user: %w", err)
	}
	if !ok {
		return models.User{}, ErrUserNotFound
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.BloodGroup != nil {
		group := models.BloodGroup(*in.BloodGroup)
		if !group.Valid() {
			return models.User{}, fmt.Errorf("%w: unknown blood group %q", ErrValidation, *in.BloodGroup)
		}
		user.BloodGroup = group
	}

	if in.Address != nil {
		trimmed := strings.TrimSpace(*in.Address)
		if trimmed != "" && trimmed != user.AddressRaw {
			point, err := s.geocoder.Resolve(ctx, *in.Address)
			if err != nil {
				return models.User{}, err
			}
			user.AddressRaw = *in.Address
			user.Location = &point
		}
	}

	user.UpdatedAt = clock.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("service: update user: %w", err)
	}
	return user, nil
}
