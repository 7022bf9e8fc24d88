package utils

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// Pointer reads the desktop pointer straight from the X server.
// Windows pinned to the desktop layer never receive input events.
type Pointer struct {
	conn *xgb.Conn
	root xproto.Window
}

func OpenPointer() (*Pointer, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("x11 connect: %w", err)
	}

	setup := xproto.Setup(conn)
	return &Pointer{conn: conn, root: setup.DefaultScreen(conn).Root}, nil
}

// Position returns root-window coordinates of the pointer.
func (p *Pointer) Position() (int, int, error) {
	reply, err := xproto.QueryPointer(p.conn, p.root).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(reply.RootX), int(reply.RootY), nil
}

func (p *Pointer) Close() {
	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
}
