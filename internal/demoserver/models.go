package demoserver

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Order is the persisted order row. The board engine never sees this type;
// it consumes the wire payload produced by payload().
type Order struct {
	ID          uint        `gorm:"primaryKey"`
	Identify    string      `gorm:"uniqueIndex;not null"`
	Status      string      `gorm:"type:varchar(20);not null;default:'Preparing'"`
	Total       float64     `gorm:"type:decimal(10,2);not null;default:0.00"`
	ClientName  string      `gorm:"type:varchar(100)"`
	ClientEmail string      `gorm:"type:varchar(100)"`
	ClientPhone string      `gorm:"type:varchar(30)"`
	TableRef    string      `gorm:"type:varchar(20)"`
	IsDelivery  bool        `gorm:"not null;default:false"`
	Address     string      `gorm:"type:varchar(200)"`
	Number      string      `gorm:"type:varchar(20)"`
	Neighborhood string     `gorm:"type:varchar(100)"`
	Complement  string      `gorm:"type:varchar(100)"`
	Notes       string      `gorm:"type:text"`
	CreatedAt   time.Time   `gorm:"not null"`
	UpdatedAt   time.Time   `gorm:"not null"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderItem is one persisted line item.
type OrderItem struct {
	ID       uint    `gorm:"primaryKey"`
	OrderID  uint    `gorm:"not null;index"`
	Name     string  `gorm:"type:varchar(100);not null"`
	Quantity int     `gorm:"not null"`
	Price    float64 `gorm:"type:decimal(10,2);not null"`
}

// migrate creates the schema.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Order{}, &OrderItem{})
}

// payload renders the row in the wire shape board clients expect: the total
// as a number, product prices as display strings, flat client fields.
func (o *Order) payload() map[string]any {
	products := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		products = append(products, map[string]any{
			"name":     item.Name,
			"quantity": item.Quantity,
			"price":    fmt.Sprintf("%.2f", item.Price),
		})
	}

	return map[string]any{
		"identify":     o.Identify,
		"status":       o.Status,
		"total":        o.Total,
		"date":         o.CreatedAt.Format("2006-01-02 15:04:05"),
		"created_at":   o.CreatedAt.Format(time.RFC3339),
		"client_name":  o.ClientName,
		"client_email": o.ClientEmail,
		"client_phone": o.ClientPhone,
		"table":        o.TableRef,
		"products":     products,
		"isDelivery":   o.IsDelivery,
		"address":      o.Address,
		"number":       o.Number,
		"neighborhood": o.Neighborhood,
		"complement":   o.Complement,
		"notes":        o.Notes,
	}
}
