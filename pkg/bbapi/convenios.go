package bbapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
)

var errInvalidAgreement = errors.New("bbapi: agreement number must be positive")

// EnableWriteOffQuery turns on operational write-off queries for an
// agreement, which ListOperationalWriteOffs and the settlement webhook
// depend on.
func (c *Client) EnableWriteOffQuery(ctx context.Context, agreement int64) (*WriteOffQueryResult, error) {
	return c.writeOffQuery(ctx, "enable_write_off_query", agreement, "ativar-consulta-baixa-operacional")
}

func (c *Client) DisableWriteOffQuery(ctx context.Context, agreement int64) (*WriteOffQueryResult, error) {
	return c.writeOffQuery(ctx, "disable_write_off_query", agreement, "desativar-consulta-baixa-operacional")
}

func (c *Client) writeOffQuery(ctx context.Context, op string, agreement int64, action string) (*WriteOffQueryResult, error) {
	if agreement <= 0 {
		return nil, errInvalidAgreement
	}
	var out WriteOffQueryResult
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPatch,
		path:   agreementPath(agreement, action),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("write-off query toggled", "agreement", agreement, "action", action)
	return &out, nil
}

// ListMovementReturns lists the movement return records of an agreement.
func (c *Client) ListMovementReturns(ctx context.Context, agreement int64, p MovementReturnParams) (*MovementReturnPage, error) {
	if agreement <= 0 {
		return nil, errInvalidAgreement
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	var out MovementReturnPage
	err := c.do(ctx, call{
		op:     "list_movement_returns",
		method: http.MethodPost,
		path:   agreementPath(agreement, "listar-retorno-movimento"),
		query:  p.values(),
		body:   struct{}{},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func agreementPath(agreement int64, action string) string {
	return conveniosPath + "/" + strconv.FormatInt(agreement, 10) + "/" + action
}
