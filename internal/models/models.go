package models

import (
	"time"
)

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleSales    = "sales"
	RoleCustomer = "customer"
)

// PrivilegedRole reports whether the role may see hidden catalog records.
func PrivilegedRole(role string) bool {
	return role == RoleAdmin || role == RoleManager || role == RoleSales
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"unique;not null"          json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	FirstName    string `json:"firstName"`
	Role         string `gorm:"not null;default:customer" json:"role"`
	Verified     bool   `gorm:"default:false"            json:"verified"`
}

type VerificationCode struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	Email     string    `gorm:"index;not null" json:"email"`
	Code      string    `gorm:"not null"       json:"-"`
	ExpiresAt time.Time `gorm:"not null"       json:"expires_at"`
	Consumed  bool      `gorm:"default:false"  json:"consumed"`
}

type Session struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	Token     string    `gorm:"unique;not null" json:"-"`
	UserID    uint      `gorm:"index;not null"  json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"        json:"expires_at"`
}

type Shop struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"not null"                 json:"name"`
}

type Product struct {
	ID          uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string             `gorm:"not null"                 json:"name"`
	Description string             `json:"description"`
	Price       float64            `gorm:"not null"                 json:"price"`
	ServiceFee  float64            `json:"service_fee"`
	Stock       uint               `json:"stock"`
	Visible     bool               `gorm:"default:true"             json:"visible"`
	ShopID      uint               `gorm:"index"                    json:"shop_id"`
	Attributes  []ProductAttribute `gorm:"constraint:OnDelete:CASCADE" json:"attributes"`
}

type ProductAttribute struct {
	ID        uint   `gorm:"primaryKey"     json:"id"`
	ProductID uint   `gorm:"index;not null" json:"product_id"`
	Name      string `gorm:"not null"       json:"name"`
	Value     string `json:"value"`
}

type Category struct {
	ID   uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"unique;not null"          json:"name"`
}

type Promotion struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"not null"                 json:"name"`
	Description string     `json:"description"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     time.Time  `json:"endDate"`
	Discount    float64    `gorm:"not null"                 json:"discount"`
	Active      bool       `gorm:"default:true"             json:"isActive"`
	Products    []Product  `gorm:"many2many:promotion_products" json:"products"`
	Categories  []Category `gorm:"many2many:promotion_categories" json:"categories"`
}

type ShopkeeperSale struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"index;not null"           json:"user_id"`
	Description string    `json:"description"`
	Amount      float64   `gorm:"not null"                 json:"amount"`
	Quantity    uint      `gorm:"default:1"                json:"quantity"`
	SaleDate    time.Time `gorm:"index"                    json:"sale_date"`
}
