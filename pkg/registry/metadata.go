package registry

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"

	"github.com/plugindepot/plugindepot/pkg/catalog"
)

// applyBundleMetadata fills name, version, vendor and bundle identifier
// from the files a bundle ships: moduleinfo.json for VST3, Info.plist for
// any macOS bundle. Both are best effort; a bundle without readable
// metadata keeps its filename-derived fields.
func applyBundleMetadata(p *Plugin) {
	nameSet, versionSet := false, false
	if p.Format == catalog.VST3 {
		if data, err := os.ReadFile(filepath.Join(p.InstallPath, "Contents", "moduleinfo.json")); err == nil {
			nameSet, versionSet = applyModuleInfo(p, data)
		}
	}

	data, err := os.ReadFile(filepath.Join(p.InstallPath, "Contents", "Info.plist"))
	if err != nil {
		return
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return
	}
	if v, ok := plistString(doc, "CFBundleIdentifier"); ok && v != "" {
		p.BundleID = v
	}
	if !nameSet {
		if v, ok := plistString(doc, "CFBundleName"); ok && v != "" {
			p.Name = v
		}
	}
	if !versionSet {
		if v, ok := plistString(doc, "CFBundleShortVersionString"); ok && v != "" {
			p.Version = v
		} else if v, ok := plistString(doc, "CFBundleVersion"); ok && v != "" {
			p.Version = v
		}
	}
}

func applyModuleInfo(p *Plugin, data []byte) (nameSet, versionSet bool) {
	if v := gjson.GetBytes(data, "Name").String(); v != "" {
		p.Name = v
		nameSet = true
	}
	if v := gjson.GetBytes(data, "Version").String(); v != "" {
		p.Version = v
		versionSet = true
	}
	if v := gjson.GetBytes(data, "Factory Info.Vendor").String(); v != "" {
		p.Vendor = v
	}
	return nameSet, versionSet
}

// plistString finds the <string> value following <key>key</key> in a
// property list. The lenient HTML parser handles plist XML fine and spares
// a dedicated plist dependency for the handful of keys read here.
func plistString(n *html.Node, key string) (string, bool) {
	if n.Type == html.ElementNode && n.Data == "key" && nodeText(n) == key {
		for sib := n.NextSibling; sib != nil; sib = sib.NextSibling {
			if sib.Type != html.ElementNode {
				continue
			}
			if sib.Data == "string" {
				return nodeText(sib), true
			}
			// The value is some other plist type.
			break
		}
		return "", false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if v, ok := plistString(c, key); ok {
			return v, ok
		}
	}
	return "", false
}

func nodeText(n *html.Node) string {
	if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
		return strings.TrimSpace(n.FirstChild.Data)
	}
	return ""
}
