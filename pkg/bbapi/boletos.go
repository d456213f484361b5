package bbapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Accordous/bb-client/pkg/boleto"
)

var errEmptyID = errors.New("bbapi: boleto id is required")

// CreateBoleto registers b with the provider.
func (c *Client) CreateBoleto(ctx context.Context, b boleto.Boleto) (*RegisteredBoleto, error) {
	var out RegisteredBoleto
	err := c.do(ctx, call{
		op:     "create_boleto",
		method: http.MethodPost,
		path:   boletosPath,
		body:   b.ToWireFormat(),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("boleto registered", "boleto_id", out.Number, "agreement", b.AgreementNumber())
	return &out, nil
}

// ListBoletos returns one page of boletos matching f.
func (c *Client) ListBoletos(ctx context.Context, f ListFilter) (*BoletoPage, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	var out BoletoPage
	err := c.do(ctx, call{
		op:     "list_boletos",
		method: http.MethodGet,
		path:   boletosPath,
		query:  f.values(),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBoleto fetches a registered boleto.
func (c *Client) GetBoleto(ctx context.Context, id string, agreement int64) (*BoletoDetail, error) {
	if id == "" {
		return nil, errEmptyID
	}
	var out BoletoDetail
	err := c.do(ctx, call{
		op:     "get_boleto",
		method: http.MethodGet,
		path:   boletoPath(id, ""),
		query:  agreementQuery(agreement),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateBoleto applies a. Empty amendments are rejected before any request
// is made.
func (c *Client) UpdateBoleto(ctx context.Context, id string, a boleto.Amendment) (*UpdateResult, error) {
	if id == "" {
		return nil, errEmptyID
	}
	if a.IsEmpty() {
		return nil, fmt.Errorf("bbapi: amendment for %s carries no change", id)
	}
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("bbapi: amendment for %s: %w", id, err)
	}
	var out UpdateResult
	err := c.do(ctx, call{
		op:     "update_boleto",
		method: http.MethodPatch,
		path:   boletoPath(id, ""),
		body:   a.ToWireFormat(),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("boleto updated", "boleto_id", id)
	return &out, nil
}

// WriteOff cancels (baixa) a registered boleto.
func (c *Client) WriteOff(ctx context.Context, id string, agreement int64) (*WriteOffResult, error) {
	if id == "" {
		return nil, errEmptyID
	}
	var out WriteOffResult
	err := c.do(ctx, call{
		op:     "write_off",
		method: http.MethodPatch,
		path:   boletoPath(id, "baixar"),
		body:   boleto.WriteOffRequest{AgreementNumber: agreement},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("boleto written off", "boleto_id", id)
	return &out, nil
}

// GeneratePix attaches a PIX QR code to a boleto.
func (c *Client) GeneratePix(ctx context.Context, id string, agreement int64) (*PixInfo, error) {
	return c.pix(ctx, "generate_pix", http.MethodPost, id, "gerar-pix", agreement)
}

// CancelPix removes the PIX QR code from a boleto.
func (c *Client) CancelPix(ctx context.Context, id string, agreement int64) (*PixInfo, error) {
	return c.pix(ctx, "cancel_pix", http.MethodPost, id, "cancelar-pix", agreement)
}

func (c *Client) GetPix(ctx context.Context, id string, agreement int64) (*PixInfo, error) {
	return c.pix(ctx, "get_pix", http.MethodGet, id, "pix", agreement)
}

func (c *Client) pix(ctx context.Context, op, method, id, action string, agreement int64) (*PixInfo, error) {
	if id == "" {
		return nil, errEmptyID
	}
	cl := call{
		op:     op,
		method: method,
		path:   boletoPath(id, action),
		out:    &PixInfo{},
	}
	if method == http.MethodGet {
		cl.query = agreementQuery(agreement)
	} else {
		cl.body = boleto.PixRequest{AgreementNumber: agreement}
	}
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return cl.out.(*PixInfo), nil
}

// ListOperationalWriteOffs lists titles settled by operational write-off
// within the scheduling window of f.
func (c *Client) ListOperationalWriteOffs(ctx context.Context, f OperationalWriteOffFilter) (*OperationalWriteOffPage, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	var out OperationalWriteOffPage
	err := c.do(ctx, call{
		op:     "list_operational_write_offs",
		method: http.MethodGet,
		path:   writeOffsPath,
		query:  f.values(),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func boletoPath(id, action string) string {
	p := boletosPath + "/" + url.PathEscape(id)
	if action != "" {
		p += "/" + action
	}
	return p
}

func agreementQuery(agreement int64) url.Values {
	return url.Values{"numeroConvenio": {strconv.FormatInt(agreement, 10)}}
}
