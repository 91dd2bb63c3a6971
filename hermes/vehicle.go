package hermes

import (
	"bytes"
	"encoding/json"
	"strings"
)

// VehicleTitles heads every workbook, in Vehicle.Row order.
var VehicleTitles = []string{
	"姓名", "手机号码", "地址", "车型", "车牌号码", "车长(米)", "吨位",
	"常驻地", "始发地", "目的地", "罗计ID", "当前位置", "经纬度", "车辆图片",
}

// Vehicle is one driver and truck listing.
type Vehicle struct {
	DriverName     string  `db:"driver_name" json:"driverName"`
	Phone          string  `db:"phone" json:"phone"`
	Address        string  `db:"address" json:"address"`
	TypeName       string  `db:"type_name" json:"typeName"`
	PlateNumber    string  `db:"plate_number" json:"plateNumber"`
	Length         float64 `db:"length" json:"length"`
	Capacity       float64 `db:"capacity" json:"capacity"`
	HomeBases      string  `db:"home_bases" json:"homeBases"`
	Origin         string  `db:"origin" json:"origin"`
	Destination    string  `db:"destination" json:"destination"`
	SiteID         string  `db:"site_id,primaryKey" json:"siteId"`
	CurrentAddress string  `db:"current_address" json:"currentAddress"`
	Coordinates    string  `db:"coordinates" json:"coordinates"`
	ImageURL       string  `db:"image_url" json:"imageUrl"`
}

// Row is the workbook row for the vehicle.
func (vehicle Vehicle) Row() []any {
	return []any{
		vehicle.DriverName,
		vehicle.Phone,
		vehicle.Address,
		vehicle.TypeName,
		vehicle.PlateNumber,
		vehicle.Length,
		vehicle.Capacity,
		vehicle.HomeBases,
		vehicle.Origin,
		vehicle.Destination,
		vehicle.SiteID,
		vehicle.CurrentAddress,
		vehicle.Coordinates,
		vehicle.ImageURL,
	}
}

// looseString accepts a JSON string, number or boolean; anything else is
// kept as its compact JSON text. null stays empty.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
	case len(data) > 0 && data[0] == '"':
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = looseString(value)
	default:
		compact := bytes.Buffer{}
		if err := json.Compact(&compact, data); err != nil {
			return err
		}
		*s = looseString(compact.String())
	}

	return nil
}

type listingItem struct {
	DriverName         looseString   `json:"driverName"`
	Phone              looseString   `json:"phone"`
	TypeName           looseString   `json:"typeName"`
	VehicleNum         looseString   `json:"vehicleNum"`
	OftenAddressDetail []looseString `json:"oftenAddressDetail"`
	BeginAddress       looseString   `json:"beginAddress"`
	EndAddress         looseString   `json:"endAddress"`
	ID                 looseString   `json:"id"`
	CurrentAddress     looseString   `json:"currentAddress"`
	LngLat             looseString   `json:"lngLat"`
	Img300x300         looseString   `json:"img300x300"`
	Vehicle            *struct {
		Address  looseString `json:"address"`
		Length   float64     `json:"length"`
		Capacity float64     `json:"capacity"`
	} `json:"vehicle"`
}

// ParseVehicle extracts a vehicle from one search result item. Items that
// are not objects, or whose vehicle is null, report false.
func ParseVehicle(raw json.RawMessage) (Vehicle, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Vehicle{}, false, nil
	}

	item := listingItem{}
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return Vehicle{}, false, err
	}

	if item.Vehicle == nil {
		return Vehicle{}, false, nil
	}

	homeBases := []string{}
	for _, base := range item.OftenAddressDetail {
		homeBases = append(homeBases, string(base))
	}

	return Vehicle{
		DriverName:     string(item.DriverName),
		Phone:          string(item.Phone),
		Address:        string(item.Vehicle.Address),
		TypeName:       string(item.TypeName),
		PlateNumber:    string(item.VehicleNum),
		Length:         item.Vehicle.Length / 100,
		Capacity:       item.Vehicle.Capacity / 1000,
		HomeBases:      strings.Join(homeBases, ","),
		Origin:         string(item.BeginAddress),
		Destination:    string(item.EndAddress),
		SiteID:         string(item.ID),
		CurrentAddress: string(item.CurrentAddress),
		Coordinates:    string(item.LngLat),
		ImageURL:       string(item.Img300x300),
	}, true, nil
}

