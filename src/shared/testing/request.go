package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"

	"github.com/labstack/echo/v4"
	"github.com/onsi/gomega"
)

type RequestModifier func(r *http.Request)

type RequestModifiers []RequestModifier

func (r *RequestModifiers) Add(mods ...RequestModifier) {
	*r = append(*r, mods...)
}

func WithAuthHeader(header string) RequestModifier {
	return func(request *http.Request) {
		request.Header.Set("Authorization", header)
	}
}

func WithUserCred(user User) RequestModifier {
	return func(request *http.Request) {
		token := TokenForUserID(user.ID)
		request.Header.Set("Authorization", "Bearer "+token)
	}
}

// UploadFile is a single file part of a multipart body
type UploadFile struct {
	FieldName   string
	FileName    string
	ContentType string
	Content     []byte
}

type RequestFactory struct {
	Method  string
	Target  string
	JSONObj interface{}
	File    *UploadFile
	Mods    RequestModifiers
}

func (r RequestFactory) make(reqMaker func(string, string, io.Reader) *http.Request) *http.Request {
	var body io.Reader
	contentType := ""

	switch {
	case r.File != nil:
		buf, multipartType := r.multipartBody()
		body = buf
		contentType = multipartType

	case r.JSONObj != nil:
		buf := &bytes.Buffer{}
		err := json.NewEncoder(buf).Encode(r.JSONObj)
		gomega.ExpectWithOffset(2, err).NotTo(gomega.HaveOccurred())

		body = buf
		contentType = echo.MIMEApplicationJSON
	}

	request := reqMaker(r.Method, r.Target, body)

	if contentType != "" {
		request.Header.Set(echo.HeaderContentType, contentType)
	}

	for _, mod := range r.Mods {
		mod(request)
	}

	return request
}

func (r RequestFactory) multipartBody() (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, r.File.FieldName, r.File.FileName))
	header.Set("Content-Type", r.File.ContentType)

	part, err := writer.CreatePart(header)
	gomega.ExpectWithOffset(3, err).NotTo(gomega.HaveOccurred())

	_, err = part.Write(r.File.Content)
	gomega.ExpectWithOffset(3, err).NotTo(gomega.HaveOccurred())

	err = writer.Close()
	gomega.ExpectWithOffset(3, err).NotTo(gomega.HaveOccurred())

	return buf, writer.FormDataContentType()
}

func (r RequestFactory) MakeFake() *http.Request {
	return r.make(httptest.NewRequest)
}

func (r RequestFactory) Do() (*http.Response, error) {
	makeRealRequest := func(method string, target string, body io.Reader) *http.Request {
		return ExpectSuccess(http.NewRequest(method, target, body))
	}

	req := r.make(makeRealRequest)
	return http.DefaultClient.Do(req)
}
