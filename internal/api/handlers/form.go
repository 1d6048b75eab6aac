package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/baharkarakas/reliefshare/internal/api/validate"
	"github.com/baharkarakas/reliefshare/internal/images"
	"github.com/baharkarakas/reliefshare/internal/services"
)

// maxResourceBody fits a full batch of images plus the text fields.
const maxResourceBody = images.MaxFiles*images.MaxFileSize + 1<<20

var textFields = []string{"title", "description", "location", "latitude", "longitude", "email", "phone"}

// resourceForm is a resource body decoded from JSON, multipart or urlencoded
// input. keys records every field the client sent.
type resourceForm struct {
	keys          map[string]struct{}
	types         []string
	typesSet      bool
	text          map[string]*string
	capacity      *int
	clearCapacity bool
	available     *bool
	uploads       []images.Upload
}

// availabilityOnly reports a body consisting of exactly the available field.
func (f *resourceForm) availabilityOnly() bool {
	_, ok := f.keys["available"]
	return ok && len(f.keys) == 1 && len(f.uploads) == 0 && f.available != nil
}

func (f *resourceForm) str(name string) string {
	if p := f.text[name]; p != nil {
		return *p
	}
	return ""
}

func (f *resourceForm) createInput() services.CreateResourceInput {
	return services.CreateResourceInput{
		Types:       f.types,
		Title:       f.str("title"),
		Description: f.str("description"),
		Location:    f.str("location"),
		Latitude:    f.text["latitude"],
		Longitude:   f.text["longitude"],
		Capacity:    f.capacity,
		Email:       f.text["email"],
		Phone:       f.text["phone"],
		Available:   f.available,
	}
}

func (f *resourceForm) updateInput() services.UpdateResourceInput {
	in := services.UpdateResourceInput{
		Title:         f.text["title"],
		Description:   f.text["description"],
		Location:      f.text["location"],
		Latitude:      f.text["latitude"],
		Longitude:     f.text["longitude"],
		Email:         f.text["email"],
		Phone:         f.text["phone"],
		Capacity:      f.capacity,
		ClearCapacity: f.clearCapacity,
		Available:     f.available,
	}
	if f.typesSet {
		types := f.types
		in.Types = &types
	}
	return in
}

func parseResourceForm(w http.ResponseWriter, r *http.Request) (*resourceForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxResourceBody)
	f := &resourceForm{keys: map[string]struct{}{}, text: map[string]*string{}}

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, bodyErr(err)
		}
		if err := f.readValues(r.MultipartForm.Value); err != nil {
			return nil, err
		}
		return f, f.readFiles(r.MultipartForm.File[images.Field])
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyErr(err)
		}
		return f, f.readValues(r.PostForm)
	default:
		return f, f.readJSON(r.Body)
	}
}

func bodyErr(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return validate.Errs{{Field: "body", Msg: "malformed request body"}}
}

func (f *resourceForm) readValues(vals map[string][]string) error {
	var errs validate.Errs
	for key, vs := range vals {
		name := strings.TrimSuffix(key, "[]")
		f.keys[name] = struct{}{}
		if name == "types" {
			f.typesSet = true
			for _, v := range vs {
				if v != "" {
					f.types = append(f.types, v)
				}
			}
			continue
		}
		v := ""
		if len(vs) > 0 {
			v = vs[0]
		}
		errs = f.set(name, v, errs)
	}
	return errs.Err()
}

func (f *resourceForm) set(name, v string, errs validate.Errs) validate.Errs {
	switch name {
	case "capacity":
		v = strings.TrimSpace(v)
		if v == "" {
			f.clearCapacity = true
			return errs
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs.Add("capacity", "must be a whole number")
			return errs
		}
		f.capacity = &n
	case "available":
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs.Add("available", "must be true or false")
			return errs
		}
		f.available = &b
	default:
		if isTextField(name) {
			s := v
			f.text[name] = &s
		}
	}
	return errs
}

func (f *resourceForm) readFiles(headers []*multipart.FileHeader) error {
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return err
		}
		f.uploads = append(f.uploads, images.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (f *resourceForm) readJSON(body io.Reader) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return bodyErr(err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return bodyErr(err)
	}
	var errs validate.Errs
	for name, msg := range fields {
		f.keys[name] = struct{}{}
		isNull := bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
		switch {
		case name == "types":
			f.typesSet = true
			if isNull {
				continue
			}
			types, ok := decodeTypes(msg)
			if !ok {
				errs.Add("types", "must be a string or an array of strings")
				continue
			}
			f.types = types
		case name == "capacity":
			var n int
			switch {
			case isNull:
				f.clearCapacity = true
			case json.Unmarshal(msg, &n) == nil:
				f.capacity = &n
			default:
				var s string
				if json.Unmarshal(msg, &s) != nil {
					errs.Add("capacity", "must be a whole number")
					continue
				}
				errs = f.set("capacity", s, errs)
			}
		case name == "available":
			var b bool
			if json.Unmarshal(msg, &b) == nil {
				f.available = &b
				continue
			}
			var s string
			if json.Unmarshal(msg, &s) != nil {
				errs.Add("available", "must be true or false")
				continue
			}
			errs = f.set("available", s, errs)
		case isTextField(name):
			if isNull {
				empty := ""
				f.text[name] = &empty
				continue
			}
			s, ok := decodeText(msg)
			if !ok {
				errs.Add(name, "must be a string")
				continue
			}
			f.text[name] = &s
		}
	}
	return errs.Err()
}

// decodeTypes accepts ["a","b"] or a single "a".
func decodeTypes(msg json.RawMessage) ([]string, bool) {
	var list []string
	if json.Unmarshal(msg, &list) == nil {
		return list, true
	}
	var one string
	if json.Unmarshal(msg, &one) == nil {
		return []string{one}, true
	}
	return nil, false
}

// decodeText accepts strings and bare numbers, so coordinates may be sent either way.
func decodeText(msg json.RawMessage) (string, bool) {
	var s string
	if json.Unmarshal(msg, &s) == nil {
		return s, true
	}
	var n json.Number
	if json.Unmarshal(msg, &n) == nil {
		return n.String(), true
	}
	return "", false
}

func isTextField(name string) bool { return slices.Contains(textFields, name) }
