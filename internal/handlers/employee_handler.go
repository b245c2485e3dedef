package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/models"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/response"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/validation"
)

const (
	msgEmployeeNotFound   = "Employee not found."
	msgNoEmployees        = "No employees found."
	msgEmailExists        = "Email already exists."
	msgEmployeeNotSaved   = "Something went wrong, Employee not created."
	msgEmployeeDeleted    = "Employee deleted successfully."
	msgInvalidBody        = "Request body must be a JSON object."
	msgNoFieldsToUpdate   = "No valid fields to update."
	msgSomethingWentWrong = "Something went wrong."
)

type EmployeeHandler struct {
	employees store.EmployeeStore
	log       logr.Logger
}

func NewEmployeeHandler(employees store.EmployeeStore, log logr.Logger) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, log: log.WithName("employees")}
}

// POST /api/v1/employee/add
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	record, ok := bindRecord(c)
	if !ok {
		return
	}
	if err := validation.EmployeeCreate.Validate(record); err != nil {
		h.rejectInvalid(c, err)
		return
	}

	e, err := employeeFromRecord(record)
	if err != nil {
		h.rejectInvalid(c, err)
		return
	}

	if err := h.employees.CreateEmployee(c.Request.Context(), e); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			response.Fail(c, response.KindConflict, msgEmailExists)
			return
		}
		h.log.Error(err, "create employee failed")
		response.Fail(c, response.KindInternal, msgEmployeeNotSaved)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"newEmployee": e})
}

// GET /api/v1/employees?page=&limit=
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	page := models.PageRequest{
		Page:  queryInt(c, "page"),
		Limit: queryInt(c, "limit"),
	}.Normalize()

	employees, total, err := h.employees.ListEmployees(c.Request.Context(), page)
	if err != nil {
		h.log.Error(err, "list employees failed")
		response.Fail(c, response.KindInternal, msgSomethingWentWrong)
		return
	}
	if total == 0 {
		response.Fail(c, response.KindNotFound, msgNoEmployees)
		return
	}

	response.Data(c, http.StatusOK, gin.H{
		"employees":  employees,
		"pagination": models.NewPagination(page, total),
	})
}

// GET /api/v1/employees/:id
func (h *EmployeeHandler) GetEmployeeByID(c *gin.Context) {
	e, err := h.employees.GetEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeFailed(c, err, "get employee failed")
		return
	}
	response.Data(c, http.StatusOK, e)
}

// PUT /api/v1/employees/:id
// Only submitted writable fields are validated and changed.
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	record, ok := bindRecord(c)
	if !ok {
		return
	}
	record = pick(record, validation.EmployeeFields)
	if len(record) == 0 {
		response.Fail(c, response.KindValidation, msgNoFieldsToUpdate)
		return
	}
	if err := validation.EmployeeUpdate.Validate(record); err != nil {
		h.rejectInvalid(c, err)
		return
	}

	update, err := employeeUpdateFromRecord(record)
	if err != nil {
		h.rejectInvalid(c, err)
		return
	}
	if update.IsEmpty() {
		response.Fail(c, response.KindValidation, msgNoFieldsToUpdate)
		return
	}

	e, err := h.employees.UpdateEmployee(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.storeFailed(c, err, "update employee failed")
		return
	}
	response.Data(c, http.StatusOK, e)
}

// DELETE /api/v1/employees/:id
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.employees.DeleteEmployee(c.Request.Context(), c.Param("id")); err != nil {
		h.storeFailed(c, err, "delete employee failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msgEmployeeDeleted})
}

func (h *EmployeeHandler) storeFailed(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Fail(c, response.KindNotFound, msgEmployeeNotFound)
	case errors.Is(err, store.ErrDuplicateEmail):
		response.Fail(c, response.KindConflict, msgEmailExists)
	default:
		h.log.Error(err, msg, "id", c.Param("id"))
		response.Fail(c, response.KindInternal, msgSomethingWentWrong)
	}
}

func (h *EmployeeHandler) rejectInvalid(c *gin.Context, err error) {
	rejectInvalid(c, h.log, err)
}

func employeeFromRecord(record map[string]interface{}) (*models.Employee, error) {
	e := &models.Employee{
		FullName: stringField(record, "fullName"),
		Email:    store.NormalizeEmail(stringField(record, "email")),
		Address:  stringField(record, "address"),
	}
	dob, err := validation.ParseDate(stringField(record, "dob"))
	if err != nil {
		return nil, dateViolation("dob")
	}
	e.DOB = dob
	if raw := stringField(record, "joiningDate"); raw != "" {
		if e.JoiningDate, err = validation.ParseDate(raw); err != nil {
			return nil, dateViolation("joiningDate")
		}
	}
	return e, nil
}

func employeeUpdateFromRecord(record map[string]interface{}) (models.EmployeeUpdate, error) {
	var u models.EmployeeUpdate
	if _, ok := record["fullName"]; ok {
		v := stringField(record, "fullName")
		u.FullName = &v
	}
	if _, ok := record["email"]; ok {
		v := store.NormalizeEmail(stringField(record, "email"))
		u.Email = &v
	}
	if _, ok := record["address"]; ok {
		v := stringField(record, "address")
		u.Address = &v
	}
	for _, f := range []struct {
		name string
		dst  **time.Time
	}{
		{"dob", &u.DOB},
		{"joiningDate", &u.JoiningDate},
	} {
		raw := stringField(record, f.name)
		if raw == "" {
			continue
		}
		t, err := validation.ParseDate(raw)
		if err != nil {
			return u, dateViolation(f.name)
		}
		*f.dst = &t
	}
	return u, nil
}

func dateViolation(field string) error {
	return validation.EmployeeCreate.Reject(field, validation.RuleFormat)
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
