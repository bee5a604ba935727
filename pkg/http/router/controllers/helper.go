package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/roadflow/pkg/util"
	"go.uber.org/zap"
)

type envelope map[string]any

func (api *routingAPI) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func (api *routingAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	if err := api.writeJSON(w, status, envelope{"error": resp.Error}, nil); err != nil {
		api.log.Error("write error response", zap.String("path", r.URL.Path), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *routingAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, "bad_request", err.Error())
}

func (api *routingAPI) NotFoundResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusNotFound, "not_found", err.Error())
}

func (api *routingAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("internal server error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	api.errorResponse(w, r, http.StatusInternalServerError, "internal_server_error", util.MessageInternalServerError)
}

// getStatusCode maps error codes of the pipeline to http responses.
func (api *routingAPI) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, util.ErrBadParamInput), errors.Is(err, util.ErrMalformedRow):
		api.BadRequestResponse(w, r, err)
	case errors.Is(err, util.ErrNotFound), errors.Is(err, util.ErrUnknownRoad), errors.Is(err, util.ErrNoPath):
		api.NotFoundResponse(w, r, err)
	default:
		api.ServerErrorResponse(w, r, err)
	}
}

// validate runs the struct tags of request and reports the first failures in english.
func (api *routingAPI) validate(request any) error {
	err := api.validator.Struct(request)
	if err == nil {
		return nil
	}
	vv := translateError(err, api.trans)
	vvString := make([]string, 0, len(vv))
	for _, v := range vv {
		vvString = append(vvString, v.Error())
	}
	return fmt.Errorf("validation error: %v", vvString)
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return validate, trans
}

func translateError(err error, trans ut.Translator) []error {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}
