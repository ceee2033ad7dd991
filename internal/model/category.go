package model

// Category groups tasks by area (work, health, study, etc.).
type Category struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:100;not null"`
	Description string `gorm:"size:250"`
	Tasks       []Task `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}
