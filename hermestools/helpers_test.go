package hermestools_test

type truck struct {
	Plate    string
	Capacity float64
}

var (
	truckSmall = truck{Plate: "A12345", Capacity: 1.5}
	truckLarge = truck{Plate: "B67890", Capacity: 30}
	trucks     = []truck{truckSmall, truckLarge}
)
