package model

type UserRole string

const (
	Admin       UserRole = "admin"
	Dean        UserRole = "dean"
	ProgramHead UserRole = "programhead"
	Faculty     UserRole = "faculty"
	Student     UserRole = "student"
)

// User 由身份服务维护，这里只读
// swagger:model User
type User struct {
	BaseModel
	Name  string   `gorm:"size:100;not null" json:"name"`
	Email string   `gorm:"size:100;unique;not null" json:"email"`
	Role  UserRole `gorm:"size:20;default:'student'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
