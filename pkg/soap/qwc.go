package soap

import (
	"encoding/xml"
	"errors"

	"github.com/google/uuid"
)

var ErrIncompleteQWC = errors.New("qwc needs app name, app url and user name")

// qwcNamespace seeds the name-based owner and file ids, so a file generated
// twice for the same company registers as the same application.
var qwcNamespace = uuid.MustParse("6f1d4a5e-3c1b-4f51-9a51-6a2f0f4b8c11")

// QWCConfig describes the Web Connector registration file for one company.
type QWCConfig struct {
	AppName          string
	AppURL           string
	AppDescription   string
	AppSupport       string
	UserName         string
	CompanyID        string
	RunEveryNMinutes int
}

type qwcScheduler struct {
	RunEveryNMinutes int `xml:"RunEveryNMinutes"`
}

type qwcFile struct {
	XMLName        xml.Name      `xml:"QBWCXML"`
	AppName        string        `xml:"AppName"`
	AppID          string        `xml:"AppID"`
	AppURL         string        `xml:"AppURL"`
	AppDescription string        `xml:"AppDescription"`
	AppSupport     string        `xml:"AppSupport"`
	UserName       string        `xml:"UserName"`
	OwnerID        string        `xml:"OwnerID"`
	FileID         string        `xml:"FileID"`
	QBType         string        `xml:"QBType"`
	Scheduler      *qwcScheduler `xml:"Scheduler,omitempty"`
	IsReadOnly     bool          `xml:"IsReadOnly"`
}

// QWC renders the .qwc file the operator imports into the Web Connector.
func QWC(cfg QWCConfig) ([]byte, error) {
	if cfg.AppName == "" || cfg.AppURL == "" || cfg.UserName == "" {
		return nil, ErrIncompleteQWC
	}
	support := cfg.AppSupport
	if support == "" {
		support = cfg.AppURL
	}
	f := qwcFile{
		AppName:        cfg.AppName,
		AppURL:         cfg.AppURL,
		AppDescription: cfg.AppDescription,
		AppSupport:     support,
		UserName:       cfg.UserName,
		OwnerID:        "{" + uuid.NewSHA1(qwcNamespace, []byte("owner:"+cfg.AppURL)).String() + "}",
		FileID:         "{" + uuid.NewSHA1(qwcNamespace, []byte("file:"+cfg.CompanyID)).String() + "}",
		QBType:         "QBFS",
	}
	if cfg.RunEveryNMinutes > 0 {
		f.Scheduler = &qwcScheduler{RunEveryNMinutes: cfg.RunEveryNMinutes}
	}

	out, err := xml.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
