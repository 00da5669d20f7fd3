package handler

import (
	appcatalog "github.com/autodealer/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CarHandler serves the public catalog and the admin car management endpoints
type CarHandler struct {
	BaseHandler
	carService *appcatalog.CarService
}

// NewCarHandler creates a new CarHandler
func NewCarHandler(carService *appcatalog.CarService) *CarHandler {
	return &CarHandler{carService: carService}
}

// ListCars godoc
// @ID           listCars
// @Summary      List cars
// @Description  Paginated catalog with filters. Staff callers also receive cost data.
// @Tags         cars
// @Produce      json
// @Param        search query string false "Search in make, model and description"
// @Param        make query string false "Make"
// @Param        body_type query string false "Body type"
// @Param        fuel_type query string false "Fuel type"
// @Param        status query string false "Status" Enums(available, reserved, sold)
// @Param        min_price query number false "Minimum public price"
// @Param        max_price query number false "Maximum public price"
// @Param        min_year query int false "Minimum year"
// @Param        max_year query int false "Maximum year"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]appcatalog.CarResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cars [get]
func (h *CarHandler) ListCars(c *gin.Context) {
	var filter appcatalog.CarListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	result, err := h.carService.ListCars(c.Request.Context(), actor(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListFeatured godoc
// @ID           listFeaturedCars
// @Summary      Featured cars
// @Description  Available cars flagged for the home page
// @Tags         cars
// @Produce      json
// @Success      200 {object} dto.Response{data=[]appcatalog.CarResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cars/featured [get]
func (h *CarHandler) ListFeatured(c *gin.Context) {
	cars, err := h.carService.ListFeatured(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cars)
}

// GetCar godoc
// @ID           getCar
// @Summary      Get car by ID
// @Tags         cars
// @Produce      json
// @Param        id path string true "Car ID" format(uuid)
// @Success      200 {object} dto.Response{data=appcatalog.CarResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cars/{id} [get]
func (h *CarHandler) GetCar(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	car, err := h.carService.GetCar(c.Request.Context(), actor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, car)
}

// CreateCar godoc
// @ID           createCar
// @Summary      Create a car
// @Tags         cars
// @Accept       json
// @Produce      json
// @Param        request body appcatalog.CarRequest true "Car"
// @Success      201 {object} dto.Response{data=appcatalog.CarResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cars [post]
func (h *CarHandler) CreateCar(c *gin.Context) {
	var req appcatalog.CarRequest
	if !h.bindJSON(c, &req) {
		return
	}

	car, err := h.carService.CreateCar(c.Request.Context(), actor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, car)
}

// UpdateCar godoc
// @ID           updateCar
// @Summary      Update a car
// @Description  Replace the listing fields. Send the version read last to detect concurrent edits.
// @Tags         cars
// @Accept       json
// @Produce      json
// @Param        id path string true "Car ID" format(uuid)
// @Param        request body appcatalog.CarRequest true "Car"
// @Success      200 {object} dto.Response{data=appcatalog.CarResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cars/{id} [put]
func (h *CarHandler) UpdateCar(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appcatalog.CarRequest
	if !h.bindJSON(c, &req) {
		return
	}

	car, err := h.carService.UpdateCar(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, car)
}

// ChangeCarStatus godoc
// @ID           changeCarStatus
// @Summary      Change car status
// @Tags         cars
// @Accept       json
// @Produce      json
// @Param        id path string true "Car ID" format(uuid)
// @Param        request body appcatalog.ChangeCarStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=appcatalog.CarResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cars/{id}/status [patch]
func (h *CarHandler) ChangeCarStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appcatalog.ChangeCarStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	car, err := h.carService.ChangeCarStatus(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, car)
}

// DeleteCar godoc
// @ID           deleteCar
// @Summary      Delete a car
// @Description  Leads that referenced the car keep their history with the reference cleared
// @Tags         cars
// @Param        id path string true "Car ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cars/{id} [delete]
func (h *CarHandler) DeleteCar(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.carService.DeleteCar(c.Request.Context(), actor(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RequestImageUpload godoc
// @ID           requestCarImageUpload
// @Summary      Get a presigned image upload URL
// @Tags         cars
// @Accept       json
// @Produce      json
// @Param        id path string true "Car ID" format(uuid)
// @Param        request body appcatalog.ImageUploadRequest true "File to upload"
// @Success      200 {object} dto.Response{data=appcatalog.ImageUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cars/{id}/images/upload-url [post]
func (h *CarHandler) RequestImageUpload(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appcatalog.ImageUploadRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.carService.RequestImageUpload(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AttachImage godoc
// @ID           attachCarImage
// @Summary      Attach an uploaded image
// @Description  Confirms the object exists in storage and appends it to the gallery
// @Tags         cars
// @Accept       json
// @Produce      json
// @Param        id path string true "Car ID" format(uuid)
// @Param        request body appcatalog.AttachImageRequest true "Uploaded object"
// @Success      200 {object} dto.Response{data=appcatalog.CarResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /cars/{id}/images [post]
func (h *CarHandler) AttachImage(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req appcatalog.AttachImageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	car, err := h.carService.AttachImage(c.Request.Context(), actor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, car)
}
