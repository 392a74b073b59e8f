package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mokoena/sla-app/internal/models"
)

type SetupInput struct {
	TradingName       string
	LegalName         string
	RegistrationNo    string
	VATNumber         string
	VATEnabled        bool
	VATRate           float64
	Email             string
	Phone             string
	Address1          string
	Address2          string
	PostalCode        string
	City              string
	Country           string
	BillingAddress1   string
	BillingAddress2   string
	BillingPostalCode string
	BillingCity       string
	BillingCountry    string
	UserID            uint // required: owner user performing setup
}

type SetupService struct{ DB *gorm.DB }

func NewSetupService(db *gorm.DB) *SetupService { return &SetupService{DB: db} }

var ErrAlreadyConfigured = errors.New("company_already_configured")

func (s *SetupService) IsConfigured() (bool, error) {
	var count int64
	if err := s.DB.Model(&models.CompanySettings{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *SetupService) Run(in SetupInput) (*models.CompanySettings, error) {
	configured, err := s.IsConfigured()
	if err != nil {
		return nil, err
	}
	if configured {
		return nil, ErrAlreadyConfigured
	}
	if in.UserID == 0 {
		return nil, errors.New("missing_user_id")
	}
	addr := models.Address{Line1: in.Address1, Line2: in.Address2, PostalCode: in.PostalCode, City: in.City, Country: in.Country, Type: "main"}
	if err := s.DB.Create(&addr).Error; err != nil {
		return nil, err
	}

	billingAddrID := addr.ID
	if in.BillingAddress1 != "" && (in.BillingAddress1 != in.Address1 || in.BillingPostalCode != in.PostalCode || in.BillingCity != in.City || in.BillingCountry != in.Country) {
		bAddr := models.Address{Line1: in.BillingAddress1, Line2: in.BillingAddress2, PostalCode: in.BillingPostalCode, City: in.BillingCity, Country: in.BillingCountry, Type: "billing"}
		if err := s.DB.Create(&bAddr).Error; err != nil {
			return nil, err
		}
		billingAddrID = bAddr.ID
	}

	legal := in.LegalName
	if legal == "" {
		legal = in.TradingName
	}
	cs := models.CompanySettings{
		UserID:           in.UserID,
		TradingName:      in.TradingName,
		LegalName:        legal,
		RegistrationNo:   in.RegistrationNo,
		VATNumber:        in.VATNumber,
		VATEnabled:       in.VATEnabled,
		VATRate:          in.VATRate,
		Currency:         "ZAR",
		Email:            in.Email,
		Phone:            in.Phone,
		AddressID:        addr.ID,
		BillingAddressID: billingAddrID,
		PenaltyRatePercent: 0.5,
		PenaltyCapPercent:  10,
	}
	if err := s.DB.Create(&cs).Error; err != nil {
		return nil, err
	}
	return &cs, nil
}

// Get returns the single company settings record if present (with addresses), otherwise nil.
func (s *SetupService) Get() (*models.CompanySettings, error) {
	var cs models.CompanySettings
	err := s.DB.Preload("Address").Preload("BillingAddress").First(&cs).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

// Update modifies existing company settings (single company app).
func (s *SetupService) Update(in SetupInput) (*models.CompanySettings, error) {
	var cs models.CompanySettings
	if err := s.DB.Preload("Address").Preload("BillingAddress").First(&cs).Error; err != nil {
		return nil, err
	}
	cs.TradingName = in.TradingName
	if in.LegalName != "" {
		cs.LegalName = in.LegalName
	}
	cs.RegistrationNo = in.RegistrationNo
	cs.VATNumber = in.VATNumber
	cs.VATEnabled = in.VATEnabled
	cs.VATRate = in.VATRate
	cs.Email = in.Email
	cs.Phone = in.Phone

	if err := s.DB.Model(&models.Address{}).Where("id = ?", cs.AddressID).
		Updates(models.Address{Line1: in.Address1, Line2: in.Address2, PostalCode: in.PostalCode, City: in.City, Country: in.Country}).Error; err != nil {
		return nil, err
	}

	separate := in.BillingAddress1 != "" && (in.BillingAddress1 != in.Address1 || in.BillingPostalCode != in.PostalCode || in.BillingCity != in.City || in.BillingCountry != in.Country)
	if separate {
		if cs.BillingAddressID == cs.AddressID || cs.BillingAddressID == 0 {
			bAddr := models.Address{Line1: in.BillingAddress1, Line2: in.BillingAddress2, PostalCode: in.BillingPostalCode, City: in.BillingCity, Country: in.BillingCountry, Type: "billing"}
			if err := s.DB.Create(&bAddr).Error; err != nil {
				return nil, err
			}
			cs.BillingAddressID = bAddr.ID
		} else {
			if err := s.DB.Model(&models.Address{}).Where("id = ?", cs.BillingAddressID).
				Updates(models.Address{Line1: in.BillingAddress1, Line2: in.BillingAddress2, PostalCode: in.BillingPostalCode, City: in.BillingCity, Country: in.BillingCountry}).Error; err != nil {
				return nil, err
			}
		}
	} else {
		cs.BillingAddressID = cs.AddressID
	}

	if err := s.DB.Save(&cs).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Preload("Address").Preload("BillingAddress").First(&cs, cs.ID).Error; err != nil {
		return nil, err
	}
	return &cs, nil
}
