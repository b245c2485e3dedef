package models

import "time"

type Employee struct {
	ID          string    `json:"id"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	DOB         time.Time `json:"dob"`
	JoiningDate time.Time `json:"joiningDate"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EmployeeUpdate carries a partial update; nil fields are left untouched.
type EmployeeUpdate struct {
	FullName    *string
	Email       *string
	DOB         *time.Time
	JoiningDate *time.Time
	Address     *string
}

func (u EmployeeUpdate) IsEmpty() bool {
	return u.FullName == nil && u.Email == nil && u.DOB == nil && u.JoiningDate == nil && u.Address == nil
}

// Apply copies the set fields onto e.
func (u EmployeeUpdate) Apply(e *Employee) {
	if u.FullName != nil {
		e.FullName = *u.FullName
	}
	if u.Email != nil {
		e.Email = *u.Email
	}
	if u.DOB != nil {
		e.DOB = *u.DOB
	}
	if u.JoiningDate != nil {
		e.JoiningDate = *u.JoiningDate
	}
	if u.Address != nil {
		e.Address = *u.Address
	}
}
