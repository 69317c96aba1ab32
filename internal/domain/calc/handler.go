package calc

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/anesthesia/internal/platform/auth"
	"github.com/ehr/anesthesia/pkg/clinicalcalc"
	"github.com/ehr/anesthesia/pkg/clock"
	"github.com/ehr/anesthesia/pkg/fieldcheck"
)

// Handler exposes the stateless clinical calculators. wall stamps drug doses
// and ages; display is the minute-resolution clock shown on the form.
type Handler struct {
	wall    clock.Clock
	display clock.Clock
}

func NewHandler(wall, display clock.Clock) *Handler {
	if wall == nil {
		wall = clock.System{}
	}
	if display == nil {
		display = wall
	}
	return &Handler{wall: wall, display: display}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.ReadRoles...))
	g.POST("/calc/bmi", h.BMI)
	g.POST("/calc/age", h.Age)
	g.POST("/calc/npo", h.NPO)
	g.POST("/calc/asa", h.ASA)
	g.POST("/calc/drug-dose", h.DrugDose)
	g.POST("/calc/drug-totals", h.DrugTotals)
	g.POST("/calc/aldrete", h.Aldrete)
	g.POST("/calc/weight", h.Weight)
	g.POST("/validate/field", h.ValidateField)
	g.GET("/clock", h.Clock)
}

type BMIRequest struct {
	Weight     float64                 `json:"weight"`
	WeightUnit clinicalcalc.WeightUnit `json:"weightUnit"`
	Height     float64                 `json:"height"`
	HeightUnit string                  `json:"heightUnit"`
}

// Normalize converts the request to kilograms and inches.
func (r BMIRequest) Normalize() (weightKg, heightInches float64, err error) {
	switch r.WeightUnit {
	case "", clinicalcalc.Kilograms:
		weightKg = r.Weight
	case clinicalcalc.Pounds:
		weightKg = clinicalcalc.LbsToKg(r.Weight)
	default:
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "weightUnit must be kg or lbs")
	}
	switch r.HeightUnit {
	case "", "in":
		heightInches = r.Height
	case "cm":
		heightInches = clinicalcalc.InchesFromCM(r.Height)
	default:
		return 0, 0, echo.NewHTTPError(http.StatusBadRequest, "heightUnit must be in or cm")
	}
	return weightKg, heightInches, nil
}

func (h *Handler) BMI(c echo.Context) error {
	var req BMIRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	kg, in, err := req.Normalize()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clinicalcalc.CalculateBMI(kg, in))
}

type AgeRequest struct {
	DOB string `json:"dob"`
}

func (h *Handler) Age(c echo.Context) error {
	var req AgeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, clinicalcalc.CalculateAge(req.DOB, h.wall.Now()))
}

type NPORequest struct {
	Hours         float64 `json:"hours"`
	ProcedureType string  `json:"procedureType"`
}

func (h *Handler) NPO(c echo.Context) error {
	var req NPORequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, clinicalcalc.ValidateNPO(req.Hours, req.ProcedureType))
}

type ASARequest struct {
	ASA           int      `json:"asa"`
	Age           int      `json:"age"`
	Comorbidities []string `json:"comorbidities"`
}

func (h *Handler) ASA(c echo.Context) error {
	var req ASARequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.ASA < 1 || req.ASA > 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "asa must be between 1 and 6")
	}
	return c.JSON(http.StatusOK, clinicalcalc.ValidateASAClassification(req.ASA, req.Age, req.Comorbidities))
}

type DrugDoseRequest struct {
	DrugName string `json:"drugName"`
	Dose     string `json:"dose"`
	Unit     string `json:"unit"`
}

func (h *Handler) DrugDose(c echo.Context) error {
	var req DrugDoseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, clinicalcalc.ValidateDrugDose(h.wall, req.DrugName, req.Dose, req.Unit))
}

type DrugTotalsRequest struct {
	Entries []clinicalcalc.DrugAmount `json:"entries"`
}

func (h *Handler) DrugTotals(c echo.Context) error {
	var req DrugTotalsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, clinicalcalc.CalculateDrugTotals(req.Entries))
}

func (h *Handler) Aldrete(c echo.Context) error {
	var req clinicalcalc.AldreteScores
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, clinicalcalc.CalculateAldreteScore(req))
}

type WeightRequest struct {
	Value float64                 `json:"value"`
	From  clinicalcalc.WeightUnit `json:"from"`
	To    clinicalcalc.WeightUnit `json:"to"`
}

type WeightResponse struct {
	Value float64                 `json:"value"`
	Unit  clinicalcalc.WeightUnit `json:"unit"`
}

func validUnit(u clinicalcalc.WeightUnit) bool {
	return u == clinicalcalc.Kilograms || u == clinicalcalc.Pounds
}

func (h *Handler) Weight(c echo.Context) error {
	var req WeightRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !validUnit(req.From) || !validUnit(req.To) {
		return echo.NewHTTPError(http.StatusBadRequest, "units must be kg or lbs")
	}
	return c.JSON(http.StatusOK, WeightResponse{
		Value: clinicalcalc.ConvertWeight(req.Value, req.From, req.To),
		Unit:  req.To,
	})
}

type FieldRequest struct {
	Rule  fieldcheck.Rule `json:"rule"`
	Value string          `json:"value"`
}

func (h *Handler) ValidateField(c echo.Context) error {
	var req FieldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Rule.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "rule.type is required")
	}
	return c.JSON(http.StatusOK, fieldcheck.Check(req.Rule, req.Value))
}

type ClockResponse struct {
	Date    string `json:"date"`
	Time    string `json:"time"`
	Compact string `json:"compact"`
	Seconds string `json:"seconds"`
}

// Clock reports the display clock the form header shows.
func (h *Handler) Clock(c echo.Context) error {
	now := h.display.Now()
	return c.JSON(http.StatusOK, ClockResponse{
		Date:    now.Format(clinicalcalc.DateLayout),
		Time:    clinicalcalc.FormatHHMM(now),
		Compact: clinicalcalc.FormatCompactHHMM(now),
		Seconds: clinicalcalc.FormatHHMMSS(now),
	})
}
