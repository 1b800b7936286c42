package security

import (
	"encoding/xml"
	"strings"
)

// Font obfuscation algorithm URIs. These are not DRM and must not cause
// rejection on their own.
var fontObfuscationAlgorithms = map[string]bool{
	"http://www.idpf.org/2008/embedding": true,
	"http://ns.adobe.com/pdf/enc#RC":     true,
}

// Known DRM fingerprints matched against the raw encryption descriptor.
var drmSignatures = []struct {
	marker  string
	drmType string
}{
	{"http://ns.adobe.com/adept", "Adobe DRM"},
	{"http://ns.adobe.com/digitaleditions", "Adobe DRM"},
	{"http://www.apple.com/fairplay", "Apple FairPlay"},
	{"sinf", "Apple FairPlay"},
	{"https://urms.sony.com", "Sony URMS"},
}

type xmlEncryption struct {
	XMLName       xml.Name           `xml:"encryption"`
	EncryptedData []xmlEncryptedData `xml:"EncryptedData"`
}

type xmlEncryptedData struct {
	EncryptionMethod struct {
		Algorithm string `xml:"Algorithm,attr"`
	} `xml:"EncryptionMethod"`
}

// CheckEpubDRM scans a META-INF/encryption.xml document for DRM fingerprints.
// Returns a DRMError identifying the scheme, or nil when the descriptor
// contains only font obfuscation entries.
func CheckEpubDRM(encryptionXML string) error {
	for _, sig := range drmSignatures {
		if strings.Contains(encryptionXML, sig.marker) {
			return &DRMError{Format: "EPUB", DRMType: sig.drmType}
		}
	}

	var enc xmlEncryption
	if err := xml.Unmarshal([]byte(encryptionXML), &enc); err != nil {
		// Unparseable descriptors carry no recognizable DRM fingerprint.
		return nil
	}

	for _, ed := range enc.EncryptedData {
		if !fontObfuscationAlgorithms[ed.EncryptionMethod.Algorithm] {
			return &DRMError{Format: "EPUB", DRMType: "Unknown DRM"}
		}
	}
	return nil
}
