package controller

import (
	"errors"
	"net/http"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo"
)

type requestRoutesHandler struct {
	requestService service.Request
	validate       *validator.Validate
}

func newRequestRoutesHandler(outer *echo.Group, services *service.Services, v *validator.Validate) *requestRoutesHandler {
	h := &requestRoutesHandler{requestService: services.Request, validate: v}

	outer.POST("/requests/medicine/local", h.PostLocalMedicine)
	outer.POST("/requests/medicine/foreign", h.PostForeignMedicine)
	outer.POST("/requests/blood-donors", h.PostBloodDonor)
	outer.PATCH("/requests/blood-donors/:id/last-donation", h.UpdateLastDonation)
	outer.POST("/requests/diaspora-volunteers", h.PostDiasporaVolunteer)
	outer.POST("/requests/exchange", h.PostExchange)
	outer.POST("/requests/import", h.PostImport)
	outer.POST("/requests/agents", h.PostAgent)

	return h
}

type contactInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"required,min=9,max=20"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

type medicineInput struct {
	contactInput
	RequestType        string   `json:"requestType"`
	MedicineName       string   `json:"medicineName" validate:"required,max=200"`
	Dosage             string   `json:"dosage,omitempty" validate:"max=100"`
	Quantity           string   `json:"quantity,omitempty" validate:"max=50"`
	Notes              string   `json:"notes,omitempty" validate:"max=1000"`
	PrescriptionImages []string `json:"prescriptionImages,omitempty" validate:"max=10,dive,url"`
	ConfirmInfo        bool     `json:"confirmInfo" validate:"eq=true"`
}

type localMedicineInput struct {
	medicineInput
	City   string `json:"city" validate:"required,max=100"`
	Wilaya string `json:"wilaya" validate:"required,max=100"`
}

type foreignMedicineInput struct {
	medicineInput
	Country string `json:"country" validate:"required,max=100"`
	City    string `json:"city,omitempty" validate:"max=100"`
	Wilaya  string `json:"wilaya,omitempty" validate:"max=100"`
}

type bloodDonorInput struct {
	contactInput
	BloodType        string `json:"bloodType" validate:"required,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Wilaya           string `json:"wilaya" validate:"required,max=100"`
	City             string `json:"city" validate:"required,max=100"`
	LastDonationDate string `json:"lastDonationDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type diasporaVolunteerInput struct {
	contactInput
	Country   string   `json:"country" validate:"required,max=100"`
	City      string   `json:"city" validate:"required,max=100"`
	CanCarry  bool     `json:"canCarry"`
	HelpTypes []string `json:"helpTypes,omitempty" validate:"max=10,dive,required,max=100"`
}

type exchangeInput struct {
	contactInput
	Wilaya       string  `json:"wilaya" validate:"required,max=100"`
	Amount       float64 `json:"amount" validate:"gt=0"`
	FromCurrency string  `json:"fromCurrency" validate:"required,len=3"`
	ToCurrency   string  `json:"toCurrency" validate:"required,len=3,nefield=FromCurrency"`
	Direction    string  `json:"direction" validate:"required,oneof=buy sell"`
	Notes        string  `json:"notes,omitempty" validate:"max=1000"`
}

type importInput struct {
	contactInput
	Wilaya             string   `json:"wilaya" validate:"required,max=100"`
	ProductDescription string   `json:"productDescription" validate:"required,max=2000"`
	ProductUrl         string   `json:"productUrl,omitempty" validate:"omitempty,url"`
	Budget             float64  `json:"budget,omitempty" validate:"gte=0"`
	Images             []string `json:"images,omitempty" validate:"max=10,dive,url"`
}

type agentInput struct {
	contactInput
	Country    string   `json:"country" validate:"required,max=100"`
	City       string   `json:"city" validate:"required,max=100"`
	Services   []string `json:"services" validate:"required,min=1,dive,required,max=100"`
	Experience string   `json:"experience,omitempty" validate:"max=2000"`
}

// /requests/medicine/local
func (h *requestRoutesHandler) PostLocalMedicine(c echo.Context) error {
	var input localMedicineInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}
	input.RequestType = "local"

	return h.submit(c, lifecycle.Medicine, input)
}

// /requests/medicine/foreign
func (h *requestRoutesHandler) PostForeignMedicine(c echo.Context) error {
	var input foreignMedicineInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}
	input.RequestType = "foreign"

	return h.submit(c, lifecycle.Medicine, input)
}

// /requests/blood-donors
func (h *requestRoutesHandler) PostBloodDonor(c echo.Context) error {
	var input bloodDonorInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	return h.submit(c, lifecycle.BloodDonor, input)
}

// /requests/diaspora-volunteers
func (h *requestRoutesHandler) PostDiasporaVolunteer(c echo.Context) error {
	var input diasporaVolunteerInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	return h.submit(c, lifecycle.DiasporaVolunteer, input)
}

// /requests/exchange
func (h *requestRoutesHandler) PostExchange(c echo.Context) error {
	var input exchangeInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	return h.submit(c, lifecycle.Exchange, input)
}

// /requests/import
func (h *requestRoutesHandler) PostImport(c echo.Context) error {
	var input importInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	return h.submit(c, lifecycle.Import, input)
}

// /requests/agents
func (h *requestRoutesHandler) PostAgent(c echo.Context) error {
	var input agentInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	return h.submit(c, lifecycle.Agent, input)
}

func (h *requestRoutesHandler) submit(c echo.Context, domain lifecycle.Domain, form any) error {
	fields, err := entity.FieldsFrom(form)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Input data is not formed correctly", err)
	}

	out, err := h.requestService.Submit(c.Request().Context(), domain, fields)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Request could not be saved", err)
	}
	if e := c.JSON(http.StatusCreated, out); e != nil {
		return e
	}

	return nil
}

type lastDonationInput struct {
	Phone            string `json:"phone" validate:"required"`
	LastDonationDate string `json:"lastDonationDate" validate:"required,datetime=2006-01-02"`
}

// /requests/blood-donors/:id/last-donation
func (h *requestRoutesHandler) UpdateLastDonation(c echo.Context) error {
	var input lastDonationInput
	if err := bindAndValidate(c, h.validate, &input); err != nil {
		return err
	}

	err := h.requestService.UpdateLastDonationDate(c.Request().Context(), c.Param("id"), input.Phone, input.LastDonationDate)
	if err != nil {
		if errors.Is(err, service.ErrDonorNotFound) {
			return fail(c, http.StatusNotFound, "There is no donor with given id and phone", err)
		}

		return fail(c, http.StatusInternalServerError, "Donation date could not be saved", err)
	}

	return c.NoContent(http.StatusNoContent)
}
