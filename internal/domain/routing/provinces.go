package routing

// Bodegas destino de la tabla por defecto.
const (
	WarehouseNorth   int64 = 1 // Hà Nội
	WarehouseCentral int64 = 2 // Đà Nẵng
	WarehouseSouth   int64 = 3 // Hồ Chí Minh
)

// Entry asocia un nombre de provincia (o alias) a una bodega.
type Entry struct {
	Region      string
	WarehouseID int64
}

var northProvinces = []string{
	"Hà Nội", "Hà Giang", "Cao Bằng", "Bắc Kạn", "Tuyên Quang", "Lào Cai", "Điện Biên",
	"Lai Châu", "Sơn La", "Yên Bái", "Hòa Bình", "Thái Nguyên", "Lạng Sơn", "Quảng Ninh",
	"Bắc Giang", "Phú Thọ", "Vĩnh Phúc", "Bắc Ninh", "Hải Dương", "Hải Phòng", "Hưng Yên",
	"Thái Bình", "Hà Nam", "Nam Định", "Ninh Bình",
}

var centralProvinces = []string{
	"Thanh Hóa", "Nghệ An", "Hà Tĩnh", "Quảng Bình", "Quảng Trị", "Thừa Thiên Huế", "Đà Nẵng",
	"Quảng Nam", "Quảng Ngãi", "Bình Định", "Phú Yên", "Khánh Hòa", "Ninh Thuận", "Bình Thuận",
	"Kon Tum", "Gia Lai", "Đắk Lắk", "Đắk Nông", "Lâm Đồng",
}

var southProvinces = []string{
	"Hồ Chí Minh", "Bình Phước", "Tây Ninh", "Bình Dương", "Đồng Nai", "Bà Rịa - Vũng Tàu",
	"Long An", "Tiền Giang", "Bến Tre", "Trà Vinh", "Vĩnh Long", "Đồng Tháp", "An Giang",
	"Kiên Giang", "Cần Thơ", "Hậu Giang", "Sóc Trăng", "Bạc Liêu", "Cà Mau",
}

// nombres usados en direcciones que no coinciden con el nombre oficial
var aliases = []Entry{
	{"Sài Gòn", WarehouseSouth},
	{"Huế", WarehouseCentral},
	{"Bà Rịa Vũng Tàu", WarehouseSouth},
	{"Hoà Bình", WarehouseNorth},
	{"Thanh Hoá", WarehouseCentral},
	{"Khánh Hoà", WarehouseCentral},
	{"Đắc Lắc", WarehouseCentral},
}

// Provinces devuelve una copia de las 63 provincias con su bodega.
func Provinces() []Entry {
	out := make([]Entry, 0, len(northProvinces)+len(centralProvinces)+len(southProvinces))
	for _, p := range northProvinces {
		out = append(out, Entry{Region: p, WarehouseID: WarehouseNorth})
	}
	for _, p := range centralProvinces {
		out = append(out, Entry{Region: p, WarehouseID: WarehouseCentral})
	}
	for _, p := range southProvinces {
		out = append(out, Entry{Region: p, WarehouseID: WarehouseSouth})
	}
	return out
}

// Aliases devuelve una copia de los alias conocidos.
func Aliases() []Entry {
	return append([]Entry(nil), aliases...)
}
