// Package catalog declares the schemas of the NYC TLC files tripload loads
// by default.
package catalog

import "github.com/vvka-141/tripload/pkg/tripload"

func nullable(name string, t tripload.ColumnType) tripload.Column {
	return tripload.Column{Name: name, Type: t, Nullable: true}
}

// YellowTrips is the column layout of the 2021 yellow taxi trip records.
func YellowTrips() tripload.Schema {
	return tripload.NewSchema(
		nullable("VendorID", tripload.TypeInt64),
		nullable("tpep_pickup_datetime", tripload.TypeTimestamp),
		nullable("tpep_dropoff_datetime", tripload.TypeTimestamp),
		nullable("passenger_count", tripload.TypeFloat64),
		nullable("trip_distance", tripload.TypeFloat64),
		nullable("RatecodeID", tripload.TypeFloat64),
		nullable("store_and_fwd_flag", tripload.TypeString),
		nullable("PULocationID", tripload.TypeInt64),
		nullable("DOLocationID", tripload.TypeInt64),
		nullable("payment_type", tripload.TypeInt64),
		nullable("fare_amount", tripload.TypeFloat64),
		nullable("extra", tripload.TypeFloat64),
		nullable("mta_tax", tripload.TypeFloat64),
		nullable("tip_amount", tripload.TypeFloat64),
		nullable("tolls_amount", tripload.TypeFloat64),
		nullable("improvement_surcharge", tripload.TypeFloat64),
		nullable("total_amount", tripload.TypeFloat64),
		nullable("congestion_surcharge", tripload.TypeFloat64),
		nullable("airport_fee", tripload.TypeFloat64),
	)
}

// TaxiZones is the column layout of taxi_zone_lookup.csv.
func TaxiZones() tripload.Schema {
	return tripload.NewSchema(
		tripload.Column{Name: "LocationID", Type: tripload.TypeInt64},
		nullable("Borough", tripload.TypeString),
		nullable("Zone", tripload.TypeString),
		nullable("service_zone", tripload.TypeString),
	)
}

// DefaultDatasets returns the trips file followed by the zone lookup,
// with their declared schemas. Empty URLs fall back to the public defaults.
func DefaultDatasets(tripsURL, zonesURL string) []tripload.DatasetSpec {
	if tripsURL == "" {
		tripsURL = tripload.DefaultTripsURL
	}
	if zonesURL == "" {
		zonesURL = tripload.DefaultZonesURL
	}
	trips := YellowTrips()
	zones := TaxiZones()
	return []tripload.DatasetSpec{
		{Name: "trips", URL: tripsURL, Format: tripload.FormatParquet, Table: tripload.DefaultTripsTable, Schema: &trips},
		{Name: "zones", URL: zonesURL, Format: tripload.FormatCSV, Table: tripload.DefaultZonesTable, Schema: &zones},
	}
}
