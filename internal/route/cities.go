package route

import "github.com/stormline/advisory/internal/domain"

// Settlement is one entry in the curated gazetteer used when no directions
// provider is available.
type Settlement struct {
	Name  string
	State string
	Coord domain.Coordinate
}

// gazetteer lists known settlements for fallback route scanning. Heavily
// weighted toward southern India, where the service first launched.
var gazetteer = []Settlement{
	// Tamil Nadu, Chennai metro
	{"Chennai", "Tamil Nadu", domain.Coordinate{Lat: 13.0827, Lon: 80.2707}},
	{"Avadi", "Tamil Nadu", domain.Coordinate{Lat: 13.1147, Lon: 80.1018}},
	{"Tambaram", "Tamil Nadu", domain.Coordinate{Lat: 12.9249, Lon: 80.1000}},

	// Tamil Nadu, coastal corridor
	{"Chengalpattu", "Tamil Nadu", domain.Coordinate{Lat: 12.6947, Lon: 79.9837}},
	{"Mahabalipuram", "Tamil Nadu", domain.Coordinate{Lat: 12.6208, Lon: 80.1989}},
	{"Puducherry", "Puducherry", domain.Coordinate{Lat: 11.9139, Lon: 79.8145}},
	{"Cuddalore", "Tamil Nadu", domain.Coordinate{Lat: 11.7480, Lon: 79.7714}},
	{"Chidambaram", "Tamil Nadu", domain.Coordinate{Lat: 11.3991, Lon: 79.6914}},
	{"Mayiladuthurai", "Tamil Nadu", domain.Coordinate{Lat: 11.1028, Lon: 79.6556}},
	{"Nagapattinam", "Tamil Nadu", domain.Coordinate{Lat: 10.7660, Lon: 79.8419}},
	{"Karaikal", "Puducherry", domain.Coordinate{Lat: 10.9254, Lon: 79.8380}},
	{"Thiruvarur", "Tamil Nadu", domain.Coordinate{Lat: 10.7724, Lon: 79.6345}},

	// Tamil Nadu, interior
	{"Trichy", "Tamil Nadu", domain.Coordinate{Lat: 10.7905, Lon: 78.7047}},
	{"Thanjavur", "Tamil Nadu", domain.Coordinate{Lat: 10.7870, Lon: 79.1378}},
	{"Villupuram", "Tamil Nadu", domain.Coordinate{Lat: 11.9401, Lon: 79.4861}},
	{"Perambalur", "Tamil Nadu", domain.Coordinate{Lat: 11.2324, Lon: 78.8798}},
	{"Ariyalur", "Tamil Nadu", domain.Coordinate{Lat: 11.1401, Lon: 79.0766}},
	{"Salem", "Tamil Nadu", domain.Coordinate{Lat: 11.6643, Lon: 78.1460}},
	{"Coimbatore", "Tamil Nadu", domain.Coordinate{Lat: 11.0168, Lon: 76.9558}},
	{"Madurai", "Tamil Nadu", domain.Coordinate{Lat: 9.9252, Lon: 78.1198}},
	{"Vellore", "Tamil Nadu", domain.Coordinate{Lat: 12.9165, Lon: 79.1325}},
	{"Kanchipuram", "Tamil Nadu", domain.Coordinate{Lat: 12.8342, Lon: 79.7036}},
	{"Hosur", "Tamil Nadu", domain.Coordinate{Lat: 12.7409, Lon: 77.8253}},
	{"Krishnagiri", "Tamil Nadu", domain.Coordinate{Lat: 12.5186, Lon: 78.2137}},
	{"Dharmapuri", "Tamil Nadu", domain.Coordinate{Lat: 12.1211, Lon: 78.1582}},
	{"Tindivanam", "Tamil Nadu", domain.Coordinate{Lat: 12.2333, Lon: 79.6500}},

	// Maharashtra
	{"Mumbai", "Maharashtra", domain.Coordinate{Lat: 19.0760, Lon: 72.8777}},
	{"Navi Mumbai", "Maharashtra", domain.Coordinate{Lat: 19.0330, Lon: 73.0297}},
	{"Thane", "Maharashtra", domain.Coordinate{Lat: 19.2183, Lon: 72.9781}},
	{"Pune", "Maharashtra", domain.Coordinate{Lat: 18.5204, Lon: 73.8567}},
	{"Nagpur", "Maharashtra", domain.Coordinate{Lat: 21.1458, Lon: 79.0882}},
	{"Nashik", "Maharashtra", domain.Coordinate{Lat: 19.9975, Lon: 73.7898}},
	{"Aurangabad", "Maharashtra", domain.Coordinate{Lat: 19.8762, Lon: 75.3433}},
	{"Solapur", "Maharashtra", domain.Coordinate{Lat: 17.6599, Lon: 75.9064}},

	// Other metros
	{"Bangalore", "Karnataka", domain.Coordinate{Lat: 12.9716, Lon: 77.5946}},
	{"Hyderabad", "Telangana", domain.Coordinate{Lat: 17.3850, Lon: 78.4867}},
	{"Delhi", "Delhi", domain.Coordinate{Lat: 28.7041, Lon: 77.1025}},
	{"Kolkata", "West Bengal", domain.Coordinate{Lat: 22.5726, Lon: 88.3639}},
	{"Ahmedabad", "Gujarat", domain.Coordinate{Lat: 23.0225, Lon: 72.5714}},
	{"Surat", "Gujarat", domain.Coordinate{Lat: 21.1702, Lon: 72.8311}},
}
