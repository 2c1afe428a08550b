package sandbox

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/agenticauto/autobuilder/internal/automation"
)

var scriptTemplate = template.Must(template.New("script").Funcs(template.FuncMap{
	"py": pyLiteral,
}).Parse(`#!/usr/bin/env python3
"""{{.Name}}

{{.Description}}

Generated by autobuilder ({{.Label}}). Runs every {{.Every}}.
Install the dependencies with: pip install {{.Requirements}}
"""
import time

import requests
{{- if .Scrapes}}
import hashlib

from bs4 import BeautifulSoup
{{- end}}

{{range .Settings}}{{.Name}} = {{py .Value}}
{{end}}INTERVAL_SECONDS = {{.IntervalSeconds}}
{{if eq .Type "website_monitor"}}

def check(last_hash):
    page = requests.get(URL, timeout=30)
    page.raise_for_status()
    soup = BeautifulSoup(page.text, "html.parser")
    element = soup.select_one(CSS_SELECTOR) or soup
    digest = hashlib.sha256(element.get_text().encode()).hexdigest()
    if last_hash is not None and digest != last_hash:
        requests.post(WEBHOOK_URL, json={"content": f"{URL} changed"}, timeout=30)
    return digest
{{else if eq .Type "price_tracker"}}

def parse_price(text):
    digits = "".join(c for c in text if c.isdigit() or c == ".")
    return float(digits) if digits else None


def check(last_price):
    page = requests.get(PRODUCT_URL, timeout=30)
    page.raise_for_status()
    soup = BeautifulSoup(page.text, "html.parser")
    element = soup.select_one(CSS_SELECTOR) or soup
    price = parse_price(element.get_text())
    if price is not None and price <= TARGET_PRICE and price != last_price:
        requests.post(WEBHOOK_URL, json={"content": f"Price dropped to {price} at {PRODUCT_URL}"}, timeout=30)
    return price
{{else if eq .Type "discord_notifier"}}

def check(_):
    requests.post(WEBHOOK_URL, json={"content": MESSAGE}, timeout=30)
{{else if eq .Type "slack_notifier"}}

def check(_):
    payload = {"text": MESSAGE}
    if CHANNEL:
        payload["channel"] = CHANNEL
    requests.post(WEBHOOK_URL, json=payload, timeout=30)
{{else}}

def check(_):
    feed = requests.get(
        "https://hn.algolia.com/api/v1/search",
        params={"query": TOPIC, "tags": "story"},
        timeout=30,
    ).json()
    lines = [f"- {hit['title']}" for hit in feed.get("hits", [])[:10]]
    print(f"Digest for {EMAIL}:\n" + "\n".join(lines))
{{end}}

def main():
    state = None
    while True:
        try:
            state = check(state)
        except requests.RequestException as exc:
            print(f"check failed: {exc}")
        time.sleep(INTERVAL_SECONDS)


if __name__ == "__main__":
    main()
`))

type setting struct {
	Name  string
	Value any
}

type scriptData struct {
	Name            string
	Description     string
	Type            string
	Label           string
	Every           string
	Requirements    string
	Scrapes         bool
	Settings        []setting
	IntervalSeconds int
}

// Script renders the Python program for a download-mode automation
func Script(req automation.CreateRequest) (string, error) {
	interval, err := scheduleInterval(req.Schedule)
	if err != nil {
		return "", err
	}

	scrapes := req.Type == automation.WebsiteMonitor || req.Type == automation.PriceTracker
	data := scriptData{
		Name:            req.Name,
		Description:     req.Description,
		Type:            string(req.Type),
		Label:           req.Type.Label(),
		Every:           interval.String(),
		Requirements:    "requests",
		Scrapes:         scrapes,
		IntervalSeconds: int(interval / time.Second),
	}
	if scrapes {
		data.Requirements = "requests beautifulsoup4"
	}

	for _, f := range req.Type.Fields() {
		v, ok := req.Config[f.Name]
		if !ok && f.Name == automation.FieldCSSSelector {
			v = automation.DefaultCSSSelector
		} else if !ok {
			v = ""
		}
		data.Settings = append(data.Settings, setting{Name: strings.ToUpper(f.Name), Value: v})
	}
	sort.SliceStable(data.Settings, func(i, j int) bool { return data.Settings[i].Name < data.Settings[j].Name })

	var b strings.Builder
	if err := scriptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render script: %w", err)
	}
	return b.String(), nil
}

// scheduleInterval returns the gap between two runs of a schedule string
func scheduleInterval(schedule string) (time.Duration, error) {
	if schedule == "" {
		schedule = automation.ScheduleFor(0)
	}
	sched, err := automation.ParseSchedule(schedule)
	if err != nil {
		return 0, err
	}
	if every, ok := sched.(cron.ConstantDelaySchedule); ok {
		return every.Delay, nil
	}
	first := sched.Next(time.Now())
	return sched.Next(first).Sub(first), nil
}

// pyLiteral renders a config value as a Python literal
func pyLiteral(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		if val {
			return "True"
		}
		return "False"
	case nil:
		return "None"
	case string:
		return strconv.Quote(val)
	default:
		return strconv.Quote(fmt.Sprint(val))
	}
}
