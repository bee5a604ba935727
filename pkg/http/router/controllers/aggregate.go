package controllers

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

func (api *routingAPI) roadFlow(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	query := r.URL.Query()
	request := flowRequest{
		Date:   query.Get("date"),
		RoadID: query.Get("road_id"),
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	roadID, err := strconv.ParseInt(request.RoadID, 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	intervals, counts, err := api.flowService.RoadFlow(request.Date, roadID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewFlowResponse(request.Date, roadID, intervals, counts)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) transitions(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	query := r.URL.Query()
	request := transitionRequest{
		Start:  query.Get("start"),
		End:    query.Get("end"),
		Origin: query.Get("origin"),
	}
	if err := api.validate(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	origin, err := strconv.ParseInt(request.Origin, 10, 64)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	transitions, err := api.transitionService.Transitions(r.Context(), request.Start, request.End, origin)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTransitionResponse(request.Start, request.End, origin, transitions)}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
