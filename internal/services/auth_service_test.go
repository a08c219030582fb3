package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/ovella/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users  []models.User
	nextID uint
}

func (repo *fakeUserRepo) ExistsByNormalizedEmail(email string) (bool, error) {
	for _, user := range repo.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (repo *fakeUserRepo) FindByNormalizedEmail(email string) (models.User, error) {
	for _, user := range repo.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, errors.New("user not found")
}

func (repo *fakeUserRepo) FindByID(userID uint) (models.User, error) {
	for _, user := range repo.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return models.User{}, errors.New("user not found")
}

func (repo *fakeUserRepo) CountAll() (int64, error) {
	return int64(len(repo.users)), nil
}

func (repo *fakeUserRepo) Create(user *models.User) error {
	repo.nextID++
	user.ID = repo.nextID
	repo.users = append(repo.users, *user)
	return nil
}

func (repo *fakeUserRepo) Save(user *models.User) error {
	for i := range repo.users {
		if repo.users[i].ID == user.ID {
			repo.users[i] = *user
			return nil
		}
	}
	repo.users = append(repo.users, *user)
	return nil
}

func (repo *fakeUserRepo) ListWithRecoveryCodeHash() ([]models.User, error) {
	return repo.users, nil
}

func hashRecoveryCode(t *testing.T, code string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash recovery code: %v", err)
	}
	return string(hash)
}

func TestFindUserByRecoveryCode(t *testing.T) {
	repo := &fakeUserRepo{}
	service := NewAuthService(repo)

	_ = repo.Create(&models.User{Email: "owner@example.com"})
	_ = repo.Create(&models.User{
		Email:            "partner@example.com",
		RecoveryCodeHash: hashRecoveryCode(t, "7Q2M-XK9F-4TNB-R6WD"),
	})

	found, err := service.FindUserByRecoveryCode("7Q2M-XK9F-4TNB-R6WD")
	if err != nil {
		t.Fatalf("FindUserByRecoveryCode() error = %v", err)
	}
	if found.Email != "partner@example.com" {
		t.Fatalf("found %s, want partner@example.com", found.Email)
	}

	if _, err := service.FindUserByRecoveryCode("AAAA-BBBB-CCCC-DDDD"); !errors.Is(err, ErrRecoveryCodeNotFound) {
		t.Fatalf("unknown code error = %v, want %v", err, ErrRecoveryCodeNotFound)
	}
}

func TestFindUserByRecoveryCodeSkipsEmptyHashes(t *testing.T) {
	repo := &fakeUserRepo{}
	service := NewAuthService(repo)

	_ = repo.Create(&models.User{Email: "first@example.com", RecoveryCodeHash: "  "})

	if _, err := service.FindUserByRecoveryCode("7Q2M-XK9F-4TNB-R6WD"); !errors.Is(err, ErrRecoveryCodeNotFound) {
		t.Fatalf("FindUserByRecoveryCode() error = %v, want %v", err, ErrRecoveryCodeNotFound)
	}
}
