package models

type Ingredient struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	Name            string `gorm:"size:150;index;not null" json:"name"`
	MeasurementUnit string `gorm:"size:150;not null" json:"measurement_unit"`
}
