/*
NAME
 online.go - the HTTP-based online request handler.

LICENSE
 netsender is Copyright (C) 2017-2026 the Australian Ocean Lab (AusOcean).

 It is free software: you can redistribute it and/or modify them
 under the terms of the GNU General Public License as published by the
 Free Software Foundation, either version 3 of the License, or (at your
 option) any later version.

 It is distributed in the hope that it will be useful, but WITHOUT
 ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
 FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
 for more details.

 You should have received a copy of the GNU General Public License in
 gpl.txt. If not, see http://www.gnu.org/licenses.
*/

package netsender

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultHost is the compile-time default NetSender service host.
const DefaultHost = "data.cloudblue.org"

// DefaultSSID is the compiled-in fallback Wi-Fi network tried when the
// configured SSID/key fails to connect
const DefaultSSID = "netsender,netsender"

// wifiConnectAttempts bounds Wi-Fi connection retries.
const wifiConnectAttempts = 10

// httpTimeout bounds a single HTTP round trip
const httpTimeout = 10 * time.Second

var endpointNames = [...]string{"config", "poll", "act", "vars"}

// OnlineHandler issues HTTP requests against the NetSender service over
// Wi-Fi.
type OnlineHandler struct {
	Host   string
	Radio  Radio
	client *http.Client
	mac    string
}

// NewOnlineHandler returns an OnlineHandler targeting host (DefaultHost
// if empty) over radio.
func NewOnlineHandler(host string, radio Radio) *OnlineHandler {
	if host == "" {
		host = DefaultHost
	}
	return &OnlineHandler{
		Host:   host,
		Radio:  radio,
		client: &http.Client{
			Timeout: httpTimeout,
			// Redirects are followed explicitly by doRequest,
			// so the client must not do it automatically.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *OnlineHandler) Name() string { return HandlerNameOnline }

// Init obtains and caches the MAC address by briefly powering the
// radio, then powers it off.
func (h *OnlineHandler) Init(ctx *Context) error {
	if h.Radio == nil {
		return nil
	}
	if err := h.Radio.PowerOn(); err != nil {
		ctx.NoteRequestFailure(int(ctx.Config.Vars[VarAlarmPeriod]))
		return fmt.Errorf("%w: radio power on: %v", ErrNetworkFailure, err)
	}
	mac, err := h.Radio.MAC()
	if err != nil {
		h.Radio.PowerOff()
		return fmt.Errorf("netsender: could not read MAC: %w", err)
	}
	h.mac = strings.ToUpper(mac)
	if err := h.Radio.PowerOff(); err != nil {
		return fmt.Errorf("%w: %v", ErrWiFiDisconnectFailure, err)
	}
	return nil
}

// connect powers the radio, attempts the configured SSID/key, and
// falls back to DefaultSSID on failure, retrying up to
// wifiConnectAttempts times.
func (h *OnlineHandler) connect(ctx *Context) error {
	if h.Radio == nil {
		return nil
	}
	if err := h.Radio.PowerOn(); err != nil {
		ctx.NoteRequestFailure(int(ctx.Config.Vars[VarAlarmPeriod]))
		return fmt.Errorf("%w: radio power on: %v", ErrNetworkFailure, err)
	}

	creds := ctx.Config.WiFiCSV
	var lastErr error
	for attempt := 0; attempt < wifiConnectAttempts; attempt++ {
		if err := h.Radio.Connect(creds); err == nil {
			return nil
		} else {
			lastErr = err
		}
		if creds != DefaultSSID {
			creds = DefaultSSID
		}
	}
	return fmt.Errorf("%w: could not associate after %d attempts: %v", ErrNetworkFailure, wifiConnectAttempts, lastErr)
}

// Disconnect powers the radio off. A failure to power off is fatal and
// is reported via ErrWiFiDisconnectFailure so the run loop can
// restart(WiFi, true).
func (h *OnlineHandler) Disconnect(ctx *Context) error {
	if h.Radio == nil {
		return nil
	}
	if err := h.Radio.PowerOff(); err != nil {
		return fmt.Errorf("%w: %v", ErrWiFiDisconnectFailure, err)
	}
	return nil
}

// Request issues an HTTP request for typ, following redirects, and
// decodes the reply
func (h *OnlineHandler) Request(ctx *Context, typ RequestType, inputs, outputs []Pin) (Reply, error) {
	if err := h.connect(ctx); err != nil {
		return Reply{RC: RcOK}, err
	}

	path, body, mimeType := h.buildRequest(ctx, typ, inputs)
	status, reply, err := h.doRequest(path, body, mimeType)
	if err != nil {
		ctx.NoteRequestFailure(int(ctx.Config.Vars[VarAlarmPeriod]))
		return Reply{RC: RcOK}, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	if status != http.StatusOK {
		ctx.NoteRequestFailure(int(ctx.Config.Vars[VarAlarmPeriod]))
		return Reply{RC: RcOK}, fmt.Errorf("%w: status %d", ErrNetworkFailure, status)
	}

	r, err := decodeReply(typ, reply)
	if err != nil {
		return Reply{RC: RcOK}, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if r.Error != "" {
		ctx.Logger.Log(WarningLevel, "service reported error", "er", r.Error)
	}

	if typ == ReqPoll || typ == ReqAct {
		for i := range outputs {
			dec := NewJSONDecoder(reply)
			v, err := dec.Int(outputs[i].Name)
			if err != nil {
				outputs[i].Value = -1
				continue
			}
			outputs[i].Value = v
			if err := ctx.WritePin(&outputs[i]); err != nil {
				ctx.Logger.Log(WarningLevel, "error writing pin", "pin", outputs[i].Name, "error", err.Error())
			}
		}
	}

	ctx.NoteRequestSuccess()
	return r, nil
}

// buildRequest assembles the request path, body, and body MIME type.
func (h *OnlineHandler) buildRequest(ctx *Context, typ RequestType, inputs []Pin) (path string, body []byte, mimeType string) {
	uptime := int(time.Since(bootTime).Seconds())
	path = fmt.Sprintf("/%s?vn=%d&ma=%s&dk=%s&ut=%d",
		endpointNames[typ], Version, h.mac, ctx.Config.DeviceKey, uptime)

	if typ == ReqConfig {
		path += fmt.Sprintf("&la=%s&md=%s&er=%s", localAddr(), ctx.Mode, ctx.Error)
	}

	var buf bytes.Buffer
	for _, p := range inputs {
		if p.Value < 0 && p.Name != downloadSpeedPin {
			continue
		}
		path += "&" + p.Name + "="
		if len(p.Data) == 0 {
			path += strconv.Itoa(p.Value)
		} else {
			path += strconv.Itoa(p.Value)
			buf.Write(p.Data)
			mimeType = p.MimeType
		}
	}
	return path, buf.Bytes(), mimeType
}

// isRedirect reports whether status is one of the 3xx codes the
// request loop follows itself rather than leaving to the HTTP client.
func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// doRequest issues the HTTP exchange, following 3xx redirects
// recursively, and returns the final status and response body text.
func (h *OnlineHandler) doRequest(path string, body []byte, mimeType string) (int, string, error) {
	for redirects := 0; redirects < 5; redirects++ {
		method := http.MethodGet
		var reader io.Reader
		if len(body) > 0 {
			method = http.MethodPost
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequest(method, "http://"+h.Host+path, reader)
		if err != nil {
			return 0, "", err
		}
		if mimeType != "" {
			req.Header.Set("Content-Type", mimeType)
		}
		resp, err := h.client.Do(req)
		if err != nil {
			return 0, "", err
		}
		if isRedirect(resp.StatusCode) {
			loc := resp.Header.Get("Location")
			resp.Body.Close()
			if loc == "" {
				return resp.StatusCode, "", fmt.Errorf("redirect with no Location")
			}
			path = loc
			continue
		}
		b, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return resp.StatusCode, "", err
		}
		return resp.StatusCode, string(b), nil
	}
	return 0, "", fmt.Errorf("too many redirects")
}

// decodeReply parses the fields relevant to typ out of reply using the
// minimal JSON field extractor.
func decodeReply(typ RequestType, reply string) (Reply, error) {
	dec := NewJSONDecoder(reply)
	var r Reply

	if er, err := dec.String("er"); err == nil {
		r.Error = er
	}
	if rc, err := dec.Int("rc"); err == nil {
		r.RC = rc
	} else {
		r.RC = RcOK
	}
	if vs, err := dec.Int("vs"); err == nil {
		r.Varsum, r.HaveVS = vs, true
	}

	switch typ {
	case ReqConfig:
		if mp, err := dec.Int("mp"); err == nil {
			r.MonPeriod, r.HaveMonPeriod = mp, true
		}
		if ap, err := dec.Int("ap"); err == nil {
			r.ActPeriod, r.HaveActPeriod = ap, true
		}
		if wi, err := dec.String("wi"); err == nil {
			r.WiFiCSV, r.HaveWiFi = wi, true
		}
		if dk, err := dec.String("dk"); err == nil {
			r.DeviceKey, r.HaveDeviceKey = dk, true
		}
		if ip, err := dec.String("ip"); err == nil {
			if _, ok := CheckCSV(ip); ok {
				r.InputsCSV, r.HaveInputs = ip, true
			}
		}
		if op, err := dec.String("op"); err == nil {
			if _, ok := CheckCSV(op); ok {
				r.OutputsCSV, r.HaveOutputs = op, true
			}
		}
	case ReqVars:
		id, _ := dec.String("id")
		r.Vars = defaultVars()
		for v := Variable(0); v < NumVars; v++ {
			name := v.String()
			if n, err := dec.Int(name); err == nil {
				r.Vars[v] = int16(n)
				continue
			}
			if id != "" {
				if n, err := dec.Int(id + "." + name); err == nil {
					r.Vars[v] = int16(n)
				}
			}
		}
		r.Vars.applyDefaults()
		r.Vars.clamp()
		r.HaveVars = true
		if ts, err := dec.Int("ts"); err == nil {
			r.RefTime, r.HaveTS = uint64(ts), true
		}
		if mode, err := dec.String("mode"); err == nil {
			r.VarsMode, r.HaveMode = mode, true
		}
	}
	return r, nil
}

// bootTime anchors uptime calculation; it is not a real-time clock
// reference, only a monotonic starting point for the process.
var bootTime = time.Now()

// localAddr returns the node's preferred local IP address, used in the
// config request's la parameter, via the usual dial-a-UDP-socket trick
// for discovering the outbound interface address.
func localAddr() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer conn.Close()
	addr := conn.LocalAddr().String()
	if i := strings.LastIndex(addr, ":"); i > 0 {
		return addr[:i]
	}
	return addr
}
