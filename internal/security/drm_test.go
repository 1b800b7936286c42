package security

import (
	"errors"
	"testing"
)

func TestCheckEpubDRM_Adobe(t *testing.T) {
	encXML := `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.w3.org/2001/04/xmlenc#aes128-cbc"/>
    <KeyInfo xmlns="http://www.w3.org/2000/09/xmldsig#">
      <resource xmlns="http://ns.adobe.com/adept">urn:uuid:abc</resource>
    </KeyInfo>
  </EncryptedData>
</encryption>`

	err := CheckEpubDRM(encXML)
	var drmErr *DRMError
	if !errors.As(err, &drmErr) {
		t.Fatalf("error type = %T, want *DRMError", err)
	}
	if drmErr.DRMType != "Adobe DRM" {
		t.Errorf("DRMType = %q, want %q", drmErr.DRMType, "Adobe DRM")
	}
}

func TestCheckEpubDRM_FairPlay(t *testing.T) {
	encXML := `<encryption><EncryptedData>
  <EncryptionMethod Algorithm="http://www.apple.com/fairplay/drm"/>
</EncryptedData></encryption>`

	err := CheckEpubDRM(encXML)
	var drmErr *DRMError
	if !errors.As(err, &drmErr) {
		t.Fatalf("error type = %T, want *DRMError", err)
	}
	if drmErr.DRMType != "Apple FairPlay" {
		t.Errorf("DRMType = %q, want %q", drmErr.DRMType, "Apple FairPlay")
	}
}

func TestCheckEpubDRM_SonyURMS(t *testing.T) {
	encXML := `<encryption><EncryptedData>
  <EncryptionMethod Algorithm="https://urms.sony.com/drm"/>
</EncryptedData></encryption>`

	err := CheckEpubDRM(encXML)
	var drmErr *DRMError
	if !errors.As(err, &drmErr) {
		t.Fatalf("error type = %T, want *DRMError", err)
	}
	if drmErr.DRMType != "Sony URMS" {
		t.Errorf("DRMType = %q, want %q", drmErr.DRMType, "Sony URMS")
	}
}

func TestCheckEpubDRM_FontObfuscationAllowed(t *testing.T) {
	encXML := `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.idpf.org/2008/embedding"/>
    <CipherData><CipherReference URI="Fonts/font.otf"/></CipherData>
  </EncryptedData>
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://ns.adobe.com/pdf/enc#RC"/>
    <CipherData><CipherReference URI="Fonts/font2.otf"/></CipherData>
  </EncryptedData>
</encryption>`

	if err := CheckEpubDRM(encXML); err != nil {
		t.Errorf("font obfuscation flagged as DRM: %v", err)
	}
}

func TestCheckEpubDRM_UnknownAlgorithm(t *testing.T) {
	encXML := `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://example.com/secret-scheme"/>
  </EncryptedData>
</encryption>`

	err := CheckEpubDRM(encXML)
	var drmErr *DRMError
	if !errors.As(err, &drmErr) {
		t.Fatalf("error type = %T, want *DRMError", err)
	}
	if drmErr.DRMType != "Unknown DRM" {
		t.Errorf("DRMType = %q, want %q", drmErr.DRMType, "Unknown DRM")
	}
}

func TestCheckEpubDRM_Empty(t *testing.T) {
	if err := CheckEpubDRM(""); err != nil {
		t.Errorf("empty descriptor flagged: %v", err)
	}
	if err := CheckEpubDRM("<encryption/>"); err != nil {
		t.Errorf("empty encryption element flagged: %v", err)
	}
}
