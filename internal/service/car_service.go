package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateCarRequest struct {
	Manufacturer string `json:"manufacturer" binding:"required"`
	Model        string `json:"model" binding:"required"`
	LicensePlate string `json:"license_plate" binding:"required"`
	Vin          string `json:"vin" binding:"required,len=17"`
	CompanyID    string `json:"company_id" binding:"required,uuid"`
}

type StartRentalRequest struct {
	CarID           string `json:"car_id" binding:"required,uuid"`
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerSurname string `json:"customer_surname" binding:"required"`
	RentalDays      int    `json:"rental_days" binding:"required,min=1"`
	StartKilometers int    `json:"start_kilometers" binding:"min=0"`
	GasTankStart    string `json:"gas_tank_start" binding:"required,oneof=empty quarter half three_quarters full"`
}

type CloseRentalRequest struct {
	EndKilometers int    `json:"end_kilometers" binding:"required,min=0"`
	GasTankEnd    string `json:"gas_tank_end" binding:"required,oneof=empty quarter half three_quarters full"`
}

// CarService manages the rental fleet and its hire records.
type CarService interface {
	CreateCar(ctx context.Context, req CreateCarRequest) (*model.Car, error)
	GetCar(ctx context.Context, id uuid.UUID) (*model.Car, error)
	ListCars(ctx context.Context, companyID *uuid.UUID) ([]model.Car, error)
	DeleteCar(ctx context.Context, id uuid.UUID) error

	StartRental(ctx context.Context, req StartRentalRequest) (*model.Rental, error)
	CloseRental(ctx context.Context, id uuid.UUID, req CloseRentalRequest) (*model.Rental, error)
	ListRentals(ctx context.Context, carID *uuid.UUID, openOnly bool) ([]model.Rental, error)
}

type carService struct {
	db *gorm.DB
}

func NewCarService(db *gorm.DB) CarService {
	return &carService{db: db}
}

func (s *carService) CreateCar(ctx context.Context, req CreateCarRequest) (*model.Car, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid company id", ErrValidation)
	}
	if err := s.db.WithContext(ctx).First(&model.Company{}, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: company", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch company: %w", err)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Car{}).
		Where("license_plate = ? OR vin = ?", req.LicensePlate, req.Vin).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check car uniqueness: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: license plate or VIN already registered", ErrValidation)
	}

	car := model.Car{
		Manufacturer: req.Manufacturer,
		Model:        req.Model,
		LicensePlate: req.LicensePlate,
		Vin:          req.Vin,
		CompanyID:    companyID,
	}
	if err := s.db.WithContext(ctx).Create(&car).Error; err != nil {
		return nil, fmt.Errorf("failed to create car: %w", err)
	}
	return &car, nil
}

func (s *carService) GetCar(ctx context.Context, id uuid.UUID) (*model.Car, error) {
	var car model.Car
	if err := s.db.WithContext(ctx).Preload("Company").First(&car, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: car", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch car: %w", err)
	}
	return &car, nil
}

func (s *carService) ListCars(ctx context.Context, companyID *uuid.UUID) ([]model.Car, error) {
	var cars []model.Car
	db := s.db.WithContext(ctx).Preload("Company")
	if companyID != nil {
		db = db.Where("company_id = ?", *companyID)
	}
	if err := db.Order("manufacturer, model").Find(&cars).Error; err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	return cars, nil
}

func (s *carService) DeleteCar(ctx context.Context, id uuid.UUID) error {
	var open int64
	if err := s.db.WithContext(ctx).Model(&model.Rental{}).
		Where("car_id = ? AND is_locked = false", id).
		Count(&open).Error; err != nil {
		return fmt.Errorf("failed to check open rentals: %w", err)
	}
	if open > 0 {
		return fmt.Errorf("%w: car has an open rental", ErrInvalidState)
	}
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Car{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete car: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: car", ErrNotFound)
	}
	return nil
}

func (s *carService) StartRental(ctx context.Context, req StartRentalRequest) (*model.Rental, error) {
	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid car id", ErrValidation)
	}

	var rental *model.Rental
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car model.Car
		if err := tx.First(&car, "id = ?", carID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: car", ErrNotFound)
			}
			return fmt.Errorf("failed to fetch car: %w", err)
		}

		var open int64
		if err := tx.Model(&model.Rental{}).
			Where("car_id = ? AND is_locked = false", carID).
			Count(&open).Error; err != nil {
			return fmt.Errorf("failed to check open rentals: %w", err)
		}
		if open > 0 {
			return fmt.Errorf("%w: car is already rented out", ErrInvalidState)
		}

		rental = &model.Rental{
			CustomerName:    req.CustomerName,
			CustomerSurname: req.CustomerSurname,
			RentalDays:      req.RentalDays,
			ReturnDatetime:  time.Now().UTC().AddDate(0, 0, req.RentalDays),
			StartKilometers: req.StartKilometers,
			GasTankStart:    req.GasTankStart,
			CompanyID:       car.CompanyID,
			CarID:           car.ID,
		}
		if err := tx.Create(rental).Error; err != nil {
			return fmt.Errorf("failed to create rental: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rental, nil
}

// CloseRental records the return readings and locks the row for good.
func (s *carService) CloseRental(ctx context.Context, id uuid.UUID, req CloseRentalRequest) (*model.Rental, error) {
	var rental model.Rental
	if err := s.db.WithContext(ctx).First(&rental, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: rental", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch rental: %w", err)
	}
	if rental.IsLocked {
		return nil, fmt.Errorf("%w: rental is already closed", ErrInvalidState)
	}
	if req.EndKilometers < rental.StartKilometers {
		return nil, fmt.Errorf("%w: end kilometers below start reading", ErrValidation)
	}

	rental.EndKilometers = &req.EndKilometers
	rental.GasTankEnd = &req.GasTankEnd
	rental.IsLocked = true
	if err := s.db.WithContext(ctx).Save(&rental).Error; err != nil {
		return nil, fmt.Errorf("failed to close rental: %w", err)
	}
	return &rental, nil
}

func (s *carService) ListRentals(ctx context.Context, carID *uuid.UUID, openOnly bool) ([]model.Rental, error) {
	var rentals []model.Rental
	db := s.db.WithContext(ctx).Preload("Car")
	if carID != nil {
		db = db.Where("car_id = ?", *carID)
	}
	if openOnly {
		db = db.Where("is_locked = false")
	}
	if err := db.Order("created_at DESC").Find(&rentals).Error; err != nil {
		return nil, fmt.Errorf("failed to list rentals: %w", err)
	}
	return rentals, nil
}
