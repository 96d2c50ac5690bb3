// Package seed loads departments, users and equipment from a YAML file
// through the services, so both stores receive them.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/services"

	"gopkg.in/yaml.v3"
)

// File is the seed document
type File struct {
	Users       []User       `yaml:"users"`
	Departments []Department `yaml:"departments"`
	Equipment   []Equipment  `yaml:"equipment"`
}

type User struct {
	Name       string `yaml:"name"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	Role       string `yaml:"role"`
	Department string `yaml:"department"`
}

// Department names its HOD by email since user ids are generated
type Department struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	HODEmail string `yaml:"hod_email"`
}

type Equipment struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Category     string   `yaml:"category"`
	Department   string   `yaml:"department"`
	Status       string   `yaml:"status"`
	Location     string   `yaml:"location"`
	Value        *float64 `yaml:"value"`
	PurchaseDate string   `yaml:"purchase_date"`
}

// Load reads and parses a seed file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &file, nil
}

// Seeder handles database seeding
type Seeder struct {
	svc   *services.Services
	store repositories.Store
}

// NewSeeder creates a new seeder instance
func NewSeeder(svc *services.Services, store repositories.Store) *Seeder {
	return &Seeder{svc: svc, store: store}
}

// Result counts what a run created
type Result struct {
	Users       int
	Departments int
	Equipment   int
}

// Run seeds users, then departments, then equipment. Users whose email is
// already registered, departments that already exist and equipment already
// present by name in its department are skipped.
func (s *Seeder) Run(ctx context.Context, file *File) (*Result, error) {
	log.Println("🌱 Running database seeders...")
	result := &Result{}

	for _, u := range file.Users {
		exists, err := s.store.Users().ExistsByEmail(ctx, u.Email)
		if err != nil {
			return result, err
		}
		if exists {
			continue
		}
		_, err = s.svc.Auth.Register(ctx, &services.RegisterInput{
			Name:       u.Name,
			Email:      u.Email,
			Password:   u.Password,
			Role:       u.Role,
			Department: u.Department,
		})
		if err != nil {
			return result, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		result.Users++
	}

	for _, d := range file.Departments {
		input := &services.CreateDepartmentInput{Name: d.Name, Location: d.Location}
		if d.HODEmail != "" {
			hod, err := s.store.Users().GetByEmail(ctx, d.HODEmail)
			if err != nil {
				return result, fmt.Errorf("seed department %s: hod %s: %w", d.Name, d.HODEmail, err)
			}
			input.HODID = hod.UserID
		}
		_, err := s.svc.Departments.Create(ctx, input)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return result, fmt.Errorf("seed department %s: %w", d.Name, err)
		}
		result.Departments++
	}

	for _, e := range file.Equipment {
		existing, err := s.store.Equipment().List(ctx, e.Department, "")
		if err != nil {
			return result, err
		}
		if containsName(existing, e.Name) {
			continue
		}

		input := &services.CreateEquipmentInput{
			Name:        e.Name,
			Description: e.Description,
			Category:    e.Category,
			Department:  e.Department,
			Status:      e.Status,
			Location:    e.Location,
			Value:       e.Value,
		}
		if e.PurchaseDate != "" {
			date, err := time.Parse("2006-01-02", e.PurchaseDate)
			if err != nil {
				return result, fmt.Errorf("seed equipment %s: purchase_date: %w", e.Name, err)
			}
			input.PurchaseDate = &date
		}
		if _, err := s.svc.Equipment.Create(ctx, input); err != nil {
			return result, fmt.Errorf("seed equipment %s: %w", e.Name, err)
		}
		result.Equipment++
	}

	log.Printf("✅ Database seeding completed [users: %d, departments: %d, equipment: %d]",
		result.Users, result.Departments, result.Equipment)
	return result, nil
}

func containsName(items []*models.Equipment, name string) bool {
	for _, item := range items {
		if item.Name == name {
			return true
		}
	}
	return false
}
