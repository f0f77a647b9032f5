package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"qbwc-sync-be/internal/pkg/logger"
	"qbwc-sync-be/pkg/qbxml"
	"qbwc-sync-be/pkg/soap"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("qbwc-sync-be/service")

// IWebConnectorService answers Web Connector SOAP calls. Handle always
// returns a well-formed envelope; failures surface as prescribed status
// values or SOAP faults.
type IWebConnectorService interface {
	Handle(ctx context.Context, body []byte) string
	WSDL(endpoint string) string
}

type WebConnectorOptions struct {
	ServerVersion string
	QBXMLVersion  string
}

type webConnectorService struct {
	sessions ISyncSessionService
	logger   logger.ILogger
	opts     WebConnectorOptions
}

func NewWebConnectorService(sessions ISyncSessionService, log logger.ILogger, opts WebConnectorOptions) IWebConnectorService {
	if opts.QBXMLVersion == "" {
		opts.QBXMLVersion = qbxml.DefaultVersion
	}
	return &webConnectorService{
		sessions: sessions,
		logger:   log,
		opts:     opts,
	}
}

func (s *webConnectorService) WSDL(endpoint string) string {
	return soap.WSDL(endpoint)
}

func (s *webConnectorService) Handle(ctx context.Context, body []byte) (out string) {
	ctx, span := tracer.Start(ctx, "qbwc.call")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("QBWC", "Panic while handling call", map[string]interface{}{
				"error": fmt.Sprint(r),
			})
			out = soap.Fault(soap.FaultServer, "internal server error")
		}
	}()

	env, err := soap.Decode(body)
	if err != nil {
		s.logger.Warn("QBWC", "Malformed SOAP request", map[string]interface{}{"error": err.Error()})
		return soap.Fault(soap.FaultClient, "malformed SOAP envelope")
	}

	ticket := env.Param("ticket")
	span.SetAttributes(attribute.String("qbwc.method", env.Name))
	s.logger.Debug("QBWC", "Call received", map[string]interface{}{
		"method": string(env.Method),
		"ticket": shortTicket(ticket),
	})

	switch env.Method {
	case soap.MethodServerVersion:
		return soap.StringResponse(env.Method, s.opts.ServerVersion)

	case soap.MethodClientVersion:
		s.logger.Info("QBWC", "Client version", map[string]interface{}{"version": env.Param("strVersion")})
		return soap.StringResponse(env.Method, "")

	case soap.MethodAuthenticate:
		res := s.sessions.Authenticate(ctx, env.Param("strUserName"), env.Param("strPassword"))
		s.logger.Info("QBWC", "Authenticate", map[string]interface{}{
			"username": env.Param("strUserName"),
			"status":   authStatusLabel(res.Status),
			"ticket":   shortTicket(res.Ticket),
		})
		return soap.StringArrayResponse(env.Method, res.Ticket, res.Status)

	case soap.MethodSendRequestXML:
		return soap.StringResponse(env.Method, s.sendRequestXML(ctx, ticket))

	case soap.MethodReceiveResponseXML:
		return soap.IntResponse(env.Method, s.receiveResponseXML(ctx, ticket,
			env.Param("response"), env.Param("hresult"), env.Param("message")))

	case soap.MethodConnectionError:
		message := describeFailure(env.Param("hresult"), env.Param("message"))
		if err := s.sessions.ConnectionError(ctx, ticket, message); err != nil {
			s.logger.Error("QBWC", "Failed to record connection error", map[string]interface{}{
				"error":  err.Error(),
				"ticket": shortTicket(ticket),
			})
		}
		s.logger.Warn("QBWC", "Connection error reported", map[string]interface{}{
			"ticket":  shortTicket(ticket),
			"message": message,
		})
		return soap.StringResponse(env.Method, "done")

	case soap.MethodGetLastError:
		msg, err := s.sessions.LastError(ctx, ticket)
		if err != nil {
			msg = "sync storage unavailable: " + err.Error()
		}
		return soap.StringResponse(env.Method, msg)

	case soap.MethodCloseConnection:
		progress, err := s.sessions.Close(ctx, ticket)
		if err != nil {
			s.logger.Error("QBWC", "Failed to close session", map[string]interface{}{
				"error":  err.Error(),
				"ticket": shortTicket(ticket),
			})
		} else {
			s.logger.Info("QBWC", "Connection closed", map[string]interface{}{
				"ticket":  shortTicket(ticket),
				"percent": progress.Percent,
			})
		}
		return soap.StringResponse(env.Method, "OK")
	}

	s.logger.Warn("QBWC", "Unknown SOAP method", map[string]interface{}{"name": env.Name})
	return soap.Fault(soap.FaultClient, "unknown method "+env.Name)
}

// sendRequestXML returns the in-flight operation's request. An operation
// already sent is returned again unchanged; one whose request cannot be
// built is errored and the next one tried.
func (s *webConnectorService) sendRequestXML(ctx context.Context, ticket string) string {
	tried := map[string]bool{}
	for {
		op, err := s.sessions.NextOperation(ctx, ticket)
		if err != nil {
			s.storageFailure(ctx, ticket, "load next operation", err)
			return ""
		}
		if op == nil {
			return ""
		}
		if op.RequestXML != "" {
			return op.RequestXML
		}
		if tried[op.Id.String()] {
			return ""
		}
		tried[op.Id.String()] = true

		req, err := qbxml.RequestFromParams(op.Kind, op.Params)
		if err != nil {
			s.logger.Warn("QBWC", "Cannot build request", map[string]interface{}{
				"error":        err.Error(),
				"operation_id": op.Id.String(),
				"kind":         string(op.Kind),
			})
			if _, err := s.sessions.Complete(ctx, ticket, op, "", "build request: "+err.Error()); err != nil {
				s.storageFailure(ctx, ticket, "error unbuildable operation", err)
				return ""
			}
			continue
		}

		requestXML := qbxml.Build(req, qbxml.BuildOptions{Version: s.opts.QBXMLVersion})
		sent, err := s.sessions.MarkSent(ctx, op.Id, requestXML)
		if err != nil {
			s.storageFailure(ctx, ticket, "mark operation sent", err)
			return ""
		}
		if !sent {
			// Another call sent it first; hand out whatever that call stored.
			continue
		}
		s.logger.Info("QBWC", "Request sent", map[string]interface{}{
			"ticket":       shortTicket(ticket),
			"operation_id": op.Id.String(),
			"kind":         string(op.Kind),
		})
		return requestXML
	}
}

func (s *webConnectorService) receiveResponseXML(ctx context.Context, ticket, response, hresult, message string) int {
	op, err := s.sessions.NextOperation(ctx, ticket)
	if err != nil {
		s.storageFailure(ctx, ticket, "load in-flight operation", err)
		return -1
	}

	var errorMessage string
	if hr := strings.TrimSpace(hresult); hr != "" && hr != "0" {
		errorMessage = describeFailure(hr, message)
	}

	var progress Progress
	if op == nil {
		progress, err = s.sessions.Progress(ctx, ticket)
	} else {
		progress, err = s.sessions.Complete(ctx, ticket, op, response, errorMessage)
	}
	if err != nil {
		s.storageFailure(ctx, ticket, "record response", err)
		return -1
	}

	s.logger.Info("QBWC", "Response received", map[string]interface{}{
		"ticket":  shortTicket(ticket),
		"percent": progress.Percent,
		"hresult": hresult,
	})
	return progress.Percent
}

func (s *webConnectorService) storageFailure(ctx context.Context, ticket, action string, err error) {
	s.logger.Error("QBWC", "Sync storage failure", map[string]interface{}{
		"error":  err.Error(),
		"action": action,
		"ticket": shortTicket(ticket),
	})
	if setErr := s.sessions.SetLastError(ctx, ticket, fmt.Sprintf("%s: %v", action, err)); setErr != nil && !errors.Is(setErr, err) {
		s.logger.Error("QBWC", "Failed to record last error", map[string]interface{}{"error": setErr.Error()})
	}
}

func describeFailure(hresult, message string) string {
	hresult = strings.TrimSpace(hresult)
	message = strings.TrimSpace(message)
	switch {
	case hresult == "" && message == "":
		return "unknown error"
	case hresult == "":
		return message
	case message == "":
		return "hresult " + hresult
	}
	return fmt.Sprintf("hresult %s: %s", hresult, message)
}

func authStatusLabel(status string) string {
	switch status {
	case AuthStatusNone, AuthStatusInvalid:
		return status
	}
	return "proceed"
}
