package anesthesia

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ehr/anesthesia/internal/platform/auth"
	"github.com/ehr/anesthesia/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Read endpoints
	readGroup := api.Group("", auth.RequireRole(auth.ReadRoles...))
	readGroup.GET("/anesthesia-records", h.ListRecords)
	readGroup.GET("/anesthesia-records/:id", h.GetRecord)
	readGroup.GET("/anesthesia-records/:id/print", h.PrintRecord)
	readGroup.GET("/anesthesia-records/:id/medications/totals", h.MedicationTotals)

	// Write endpoints
	writeGroup := api.Group("", auth.RequireRole(auth.WriteRoles...))
	writeGroup.POST("/anesthesia-records", h.CreateRecord)
	writeGroup.DELETE("/anesthesia-records/:id", h.DeleteRecord)
	writeGroup.PATCH("/anesthesia-records/:id/sections/:section", h.MergeSection)

	writeGroup.PUT("/anesthesia-records/:id/pre-op-vitals/taken-day-of-procedure", h.SetTakenDayOfProcedure)
	writeGroup.POST("/anesthesia-records/:id/pre-op-vitals/load", h.LoadPreOpVitals)
	writeGroup.PUT("/anesthesia-records/:id/pre-op-vitals/weight", h.SetPreOpWeight)
	writeGroup.PUT("/anesthesia-records/:id/pre-op-vitals/height", h.SetPreOpHeight)
	writeGroup.POST("/anesthesia-records/:id/intra-op-vitals/load", h.LoadIntraOpVitals)

	writeGroup.PUT("/anesthesia-records/:id/discharge/blood-pressure", h.SetDischargeBloodPressure)
	writeGroup.PUT("/anesthesia-records/:id/discharge/circulation", h.SetCirculation)
	writeGroup.PUT("/anesthesia-records/:id/discharge/scores", h.SetDischargeScores)

	writeGroup.POST("/anesthesia-records/:id/prescriptions/drafts", h.AddDraft)
	writeGroup.PATCH("/anesthesia-records/:id/prescriptions/drafts/:draftId", h.UpdateDraft)
	writeGroup.DELETE("/anesthesia-records/:id/prescriptions/drafts/:draftId", h.DeleteDraft)
	writeGroup.POST("/anesthesia-records/:id/prescriptions/drafts/:draftId/submit", h.SubmitDraft)

	writeGroup.POST("/anesthesia-records/:id/medications", h.AddMedication)
	writeGroup.PATCH("/anesthesia-records/:id/medications/:entryId", h.UpdateMedication)
	writeGroup.DELETE("/anesthesia-records/:id/medications/:entryId", h.RemoveMedication)
	writeGroup.POST("/anesthesia-records/:id/local-anesthetics", h.AddLocalAnesthetic)
	writeGroup.PATCH("/anesthesia-records/:id/local-anesthetics/:entryId", h.UpdateLocalAnesthetic)
	writeGroup.DELETE("/anesthesia-records/:id/local-anesthetics/:entryId", h.RemoveLocalAnesthetic)
	writeGroup.POST("/anesthesia-records/:id/consciousness", h.AddConsciousness)
	writeGroup.DELETE("/anesthesia-records/:id/consciousness/:entryId", h.RemoveConsciousness)
	writeGroup.PUT("/anesthesia-records/:id/gases/:gas", h.UpdateGas)
	writeGroup.POST("/anesthesia-records/:id/drug-log", h.LogDrug)
}

// httpError maps service errors onto transport errors.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "anesthesia record not found")
	case errors.Is(err, ErrDraftNotFound), errors.Is(err, ErrEntryNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnknownSection), errors.Is(err, ErrInvalidPatch), errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func readPatch(c echo.Context) (json.RawMessage, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "failed to read body")
	}
	return body, nil
}

// -- Records --

func (h *Handler) CreateRecord(c echo.Context) error {
	body, err := readPatch(c)
	if err != nil {
		return err
	}
	var initial map[string]json.RawMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &initial); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
		}
	}
	rec, err := h.svc.CreateRecord(c.Request().Context(), initial)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.GetView(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) ListRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	recs, total, err := h.svc.ListRecords(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewPage(recs, total, pg))
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MergeSection(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patch, err := readPatch(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.MergeSection(c.Request().Context(), id, c.Param("section"), patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) PrintRecord(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	out, err := h.svc.Print(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, out)
}

// -- Propagation --

type loadResponse struct {
	Loaded bool    `json:"loaded"`
	Record *Record `json:"record"`
}

func (h *Handler) SetTakenDayOfProcedure(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Taken bool `json:"takenDayOfProcedure"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.SetTakenDayOfProcedure(c.Request().Context(), id, body.Taken)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) LoadIntraOpVitals(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, loaded, err := h.svc.LoadIntraOpVitals(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loadResponse{Loaded: loaded, Record: rec})
}

func (h *Handler) LoadPreOpVitals(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	rec, loaded, err := h.svc.LoadPreOpVitals(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loadResponse{Loaded: loaded, Record: rec})
}

func (h *Handler) SetPreOpWeight(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in WeightInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.SetPreOpWeight(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) SetPreOpHeight(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in HeightInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.SetPreOpHeight(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// -- Discharge --

func (h *Handler) SetDischargeBloodPressure(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		BloodPressure string `json:"bloodPressure"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.SetDischargeBloodPressure(c.Request().Context(), id, body.BloodPressure)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, NewView(rec, h.svc.wall.Now()))
}

func (h *Handler) SetCirculation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Score *int `json:"score"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.Score == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "score is required")
	}
	rec, err := h.svc.SetCirculation(c.Request().Context(), id, *body.Score)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, NewView(rec, h.svc.wall.Now()))
}

func (h *Handler) SetDischargeScores(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in DischargeScoresInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.SetDischargeScores(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, NewView(rec, h.svc.wall.Now()))
}

// -- Prescriptions --

func (h *Handler) AddDraft(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Category string `json:"category"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.AddDraft(c.Request().Context(), id, body.Category)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateDraft(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patch, err := readPatch(c)
	if err != nil {
		return err
	}
	d, err := h.svc.UpdateDraft(c.Request().Context(), id, c.Param("draftId"), patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDraft(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDraft(c.Request().Context(), id, c.Param("draftId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SubmitDraft(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	e, err := h.svc.SubmitDraft(c.Request().Context(), id, c.Param("draftId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, e)
}

// -- Intra-op tracker --

func (h *Handler) AddMedication(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in MedicationInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.AddMedication(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) UpdateMedication(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patch, err := readPatch(c)
	if err != nil {
		return err
	}
	e, err := h.svc.UpdateMedication(c.Request().Context(), id, c.Param("entryId"), patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) RemoveMedication(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.RemoveMedication(c.Request().Context(), id, c.Param("entryId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) MedicationTotals(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	totals, err := h.svc.MedicationTotals(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, totals)
}

func (h *Handler) AddLocalAnesthetic(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in LocalAnestheticInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.AddLocalAnesthetic(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) UpdateLocalAnesthetic(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patch, err := readPatch(c)
	if err != nil {
		return err
	}
	e, err := h.svc.UpdateLocalAnesthetic(c.Request().Context(), id, c.Param("entryId"), patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, e)
}

func (h *Handler) RemoveLocalAnesthetic(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.RemoveLocalAnesthetic(c.Request().Context(), id, c.Param("entryId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddConsciousness(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var body struct {
		Score int `json:"score"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.AddConsciousness(c.Request().Context(), id, body.Score)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, e)
}

func (h *Handler) RemoveConsciousness(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.RemoveConsciousness(c.Request().Context(), id, c.Param("entryId")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) UpdateGas(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	patch, err := readPatch(c)
	if err != nil {
		return err
	}
	rec, err := h.svc.UpdateGas(c.Request().Context(), id, c.Param("gas"), patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec.IntraOpTracker.Gases)
}

func (h *Handler) LogDrug(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in DrugLogInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	e, err := h.svc.LogDrug(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, e)
}
