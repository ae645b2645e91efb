package config

import (
	"log"
	"time"

	"tanda-xntrust/internal/adapters/persistence/models"
	"tanda-xntrust/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}
	if err := s.seedServiceUser(); err != nil {
		log.Printf("⚠️ Service account seeder skipped: %v", err)
	}
	if err := s.seedCircles(); err != nil {
		log.Printf("⚠️ Circle seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminUser seeds default admin user
// This is for development/testing only
// In production, create admin through secure process
func (s *Seeder) seedAdminUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	member := &models.Member{
		MembNo:           "ADMIN001",
		FullName:         "Platform Admin",
		IsActive:         true,
		AccountCreatedAt: time.Now(),
		CurrentTier:      6,
	}
	if err := s.db.FirstOrCreate(member, models.Member{MembNo: member.MembNo}).Error; err != nil {
		return err
	}

	admin := &models.User{
		MembNo:   "ADMIN001",
		Username: "admin",
		Email:    "admin@xntanda.com",
		Password: hashedPassword,
		Role:     "ADMIN",
		IsActive: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user created: %s", admin.Username)
	return nil
}

// seedServiceUser seeds the internal service account used by the circle and
// payment engines to publish score events
func (s *Seeder) seedServiceUser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", "SERVICE").Count(&count)
	if count > 0 {
		return nil
	}

	hashedPassword, err := password.Hash("service-dev-only")
	if err != nil {
		return err
	}

	member := &models.Member{
		MembNo:           "SVC00001",
		FullName:         "Internal Service",
		IsActive:         true,
		AccountCreatedAt: time.Now(),
		CurrentTier:      6,
	}
	if err := s.db.FirstOrCreate(member, models.Member{MembNo: member.MembNo}).Error; err != nil {
		return err
	}

	svc := &models.User{
		MembNo:   "SVC00001",
		Username: "circle-engine",
		Email:    "svc@xntanda.com",
		Password: hashedPassword,
		Role:     "SERVICE",
		IsActive: true,
	}
	if err := s.db.Create(svc).Error; err != nil {
		return err
	}

	log.Printf("✅ Service account created: %s", svc.Username)
	return nil
}

// seedCircles seeds a few sample circles so eligibility checks have
// something to run against in development
func (s *Seeder) seedCircles() error {
	var count int64
	s.db.Model(&models.Circle{}).Count(&count)
	if count > 0 {
		return nil
	}

	circles := []models.Circle{
		{Name: "Starter Circle", MinXnScore: 0, MaxMembers: 8, ContributionAmount: 500, FrequencyDays: 7, IsActive: true},
		{Name: "Neighborhood Savers", MinXnScore: 45, MaxMembers: 12, ContributionAmount: 2000, FrequencyDays: 14, IsActive: true},
		{Name: "Gold Tanda", MinXnScore: 75, MaxMembers: 10, ContributionAmount: 10000, FrequencyDays: 30, IsActive: true},
	}

	if err := s.db.Create(&circles).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d sample circles", len(circles))
	return nil
}
