package domain

import "fmt"

type Occasion string

const (
	OccasionDaily  Occasion = "daily"
	OccasionWork   Occasion = "work"
	OccasionParty  Occasion = "party"
	OccasionSport  Occasion = "sport"
	OccasionDate   Occasion = "date"
	OccasionTravel Occasion = "travel"
	OccasionHome   Occasion = "home"
)

type Weather string

const (
	WeatherHot   Weather = "hot"
	WeatherWarm  Weather = "warm"
	WeatherCool  Weather = "cool"
	WeatherCold  Weather = "cold"
	WeatherRainy Weather = "rainy"
	WeatherSnowy Weather = "snowy"
)

type Style string

const (
	StyleCasual      Style = "casual"
	StyleFormal      Style = "formal"
	StyleFashionable Style = "fashionable"
	StyleSporty      Style = "sporty"
	StyleRetro       Style = "retro"
	StyleMinimalist  Style = "minimalist"
	StyleSweet       Style = "sweet"
	StyleEdgy        Style = "edgy"
)

// Option describes one selectable value of the form.
type Option struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Display string `json:"display"`
}

// Options are listed in form order. Label is the English phrase used in
// prompts, Display the Chinese caption shown next to it.
var (
	Occasions = []Option{
		{string(OccasionDaily), "everyday", "日常"},
		{string(OccasionWork), "work", "工作"},
		{string(OccasionParty), "party", "派对"},
		{string(OccasionSport), "sports", "运动"},
		{string(OccasionDate), "date", "约会"},
		{string(OccasionTravel), "travel", "旅行"},
		{string(OccasionHome), "at-home", "居家"},
	}
	Weathers = []Option{
		{string(WeatherHot), "hot", "炎热"},
		{string(WeatherWarm), "warm", "温暖"},
		{string(WeatherCool), "cool", "凉爽"},
		{string(WeatherCold), "cold", "寒冷"},
		{string(WeatherRainy), "rainy", "雨天"},
		{string(WeatherSnowy), "snowy", "雪天"},
	}
	Styles = []Option{
		{string(StyleCasual), "casual", "休闲"},
		{string(StyleFormal), "formal", "正式"},
		{string(StyleFashionable), "fashionable", "时尚"},
		{string(StyleSporty), "sporty", "运动"},
		{string(StyleRetro), "retro", "复古"},
		{string(StyleMinimalist), "minimalist", "简约"},
		{string(StyleSweet), "sweet", "甜美"},
		{string(StyleEdgy), "edgy", "个性"},
	}
)

// lookup matches s against the key or the display caption.
func lookup(opts []Option, s string) (Option, bool) {
	for _, o := range opts {
		if s == o.Key || s == o.Display {
			return o, true
		}
	}
	return Option{}, false
}

func ParseOccasion(s string) (Occasion, error) {
	o, ok := lookup(Occasions, s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidOccasion, s)
	}
	return Occasion(o.Key), nil
}

func ParseWeather(s string) (Weather, error) {
	o, ok := lookup(Weathers, s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidWeather, s)
	}
	return Weather(o.Key), nil
}

// ParseStyle returns an empty Style for an empty string; style is optional.
func ParseStyle(s string) (Style, error) {
	if s == "" {
		return "", nil
	}
	o, ok := lookup(Styles, s)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStyle, s)
	}
	return Style(o.Key), nil
}

func (o Occasion) Label() string { return label(Occasions, string(o)) }
func (w Weather) Label() string  { return label(Weathers, string(w)) }
func (s Style) Label() string    { return label(Styles, string(s)) }

func (o Occasion) Display() string { return display(Occasions, string(o)) }
func (w Weather) Display() string  { return display(Weathers, string(w)) }
func (s Style) Display() string    { return display(Styles, string(s)) }

func label(opts []Option, key string) string {
	if o, ok := lookup(opts, key); ok {
		return o.Label
	}
	return key
}

func display(opts []Option, key string) string {
	if o, ok := lookup(opts, key); ok {
		return o.Display
	}
	return key
}
