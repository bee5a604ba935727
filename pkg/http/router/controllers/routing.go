package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	da "github.com/lintang-b-s/roadflow/pkg/datastructure"
	helper "github.com/lintang-b-s/roadflow/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type routingAPI struct {
	routingService    RoutingService
	trajectoryService TrajectoryService
	flowService       FlowService
	transitionService TransitionService
	validator         *validator.Validate
	trans             ut.Translator
	log               *zap.Logger
}

func New(routingService RoutingService, trajectoryService TrajectoryService, flowService FlowService,
	transitionService TransitionService, log *zap.Logger) *routingAPI {
	validate, trans := newValidator()
	return &routingAPI{
		routingService:    routingService,
		trajectoryService: trajectoryService,
		flowService:       flowService,
		transitionService: transitionService,
		validator:         validate,
		trans:             trans,
		log:               log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/shortestPath", api.shortestPath)
	group.POST("/trajectory", api.reconstructTrajectory)
	group.GET("/flow", api.roadFlow)
	group.GET("/transitions", api.transitions)
}

func (api *routingAPI) shortestPath(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	query := r.URL.Query()
	request := shortestPathRequest{
		Origin:      query.Get("origin"),
		Destination: query.Get("destination"),
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	origin, err := strconv.ParseInt(request.Origin, 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("origin must be a road id: %w", err))
		return
	}
	destination, err := strconv.ParseInt(request.Destination, 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("destination must be a road id: %w", err))
		return
	}

	path, length, err := api.routingService.ShortestPath(origin, destination)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewShortestPathResponse(path, length)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) reconstructTrajectory(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request trajectoryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	readings := make([]da.Reading, len(request.Readings))
	for i, rr := range request.Readings {
		t, err := da.ParseTimestamp(rr.Time)
		if err != nil {
			api.BadRequestResponse(w, r, fmt.Errorf("readings[%d].time must be dd/mm/yyyy hh:mm:ss: %w", i, err))
			return
		}
		readings[i] = da.NewReading(request.VehicleID, t, rr.RoadID)
	}

	points, stats, err := api.trajectoryService.Reconstruct(request.VehicleID, readings)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTrajectoryResponse(request.VehicleID, points, stats)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
