package exceptions

import (
	"fmt"
	"runtime"
	"smartmarkers-service/internal/pkg/constvars"
)

type CustomError struct {
	StatusCode    int       `json:"status_code"`
	Success       bool      `json:"success"`
	ClientMessage string    `json:"message"`
	DevMessage    string    `json:"dev_message,omitempty"`
	Location      *Location `json:"location,omitempty"`

	// Kind is one of the sentinel errors in kinds.go, Err is the cause.
	Kind error `json:"-"`
	Err  error `json:"-"`
}

type Location struct {
	File         string `json:"file"`
	Line         int    `json:"line"`
	FunctionName string `json:"function_name"`
}

func (e *CustomError) Error() string {
	if e.Location == nil {
		return e.DevMessage
	}
	return fmt.Sprintf("%s (%s:%d %s)", e.DevMessage, e.Location.File, e.Location.Line, e.Location.FunctionName)
}

func (e *CustomError) Unwrap() []error {
	unwrapped := make([]error, 0, 2)
	if e.Kind != nil {
		unwrapped = append(unwrapped, e.Kind)
	}
	if e.Err != nil {
		unwrapped = append(unwrapped, e.Err)
	}
	return unwrapped
}

func BuildNewCustomError(err error, statusCode int, clientMessage, devMessage string) *CustomError {
	location := getLocation(3)
	devMsg := devMessage
	if err != nil {
		devMsg = fmt.Sprintf("%s: %s", devMessage, err.Error())
	}
	return &CustomError{
		StatusCode:    statusCode,
		ClientMessage: clientMessage,
		DevMessage:    devMsg,
		Location:      &location,
		Err:           err,
	}
}

func buildKindError(kind, err error, statusCode int, clientMessage, devMessage string) *CustomError {
	customErr := BuildNewCustomError(err, statusCode, clientMessage, devMessage)
	customErr.Kind = kind
	customErr.Location = locationPtr(getLocation(3))
	return customErr
}

func locationPtr(location Location) *Location {
	return &location
}

func getLocation(skip int) Location {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Location{
			File:         constvars.ResponseUnknown,
			Line:         0,
			FunctionName: constvars.ResponseUnknown,
		}
	}
	function := runtime.FuncForPC(pc).Name()
	return Location{
		File:         file,
		Line:         line,
		FunctionName: function,
	}
}
