package inspect

import (
	"context"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls the inspection service with plain maps as requests and responses.
type Client struct {
	conn    *grpc.ClientConn
	service *desc.ServiceDescriptor
}

// Dial connects to the inspection service at target. The connection is
// established lazily on the first call.
func Dial(target string) (*Client, error) {
	sd, err := Schema()
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", target, err)
	}
	return &Client{conn: conn, service: sd}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Call invokes method with the fields of req. Fields the request message does
// not define are ignored.
func (c *Client) Call(ctx context.Context, method string, req map[string]any) (map[string]any, error) {
	md := c.service.FindMethodByName(method)
	if md == nil {
		return nil, fmt.Errorf("unknown method %q", method)
	}

	in := dynamic.NewMessage(md.GetInputType())
	if err := toMessage(req, in); err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	out := dynamic.NewMessage(md.GetOutputType())

	path := fmt.Sprintf("/%s/%s", c.service.GetFullyQualifiedName(), method)
	if err := c.conn.Invoke(ctx, path, in, out); err != nil {
		return nil, err
	}
	return fromMessage(out), nil
}
