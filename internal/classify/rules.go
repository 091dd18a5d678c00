package classify

// Role is the shading purpose of a texture.
type Role string

const (
	RoleBaseColor    Role = "basecolor"
	RoleRoughness    Role = "roughness"
	RoleMetallic     Role = "metallic"
	RoleNormal       Role = "normal"
	RoleDisplacement Role = "displacement"
	RoleEmission     Role = "emission"
	RoleOpacity      Role = "opacity"
	RoleUnknown      Role = "unknown"
)

// Colorspace names as understood by the shading network.
type Colorspace string

const (
	ColorspaceSRGB        Colorspace = "srgb_texture"
	ColorspaceSceneLinear Colorspace = "scene_linear"
	ColorspaceACEScg      Colorspace = "acescg"
	ColorspaceRaw         Colorspace = "raw"
)

// Rule maps a set of whole-word filename keywords to a role.
type Rule struct {
	Role     Role
	Keywords []string
}

// Rules is evaluated in order; first match wins. Data maps come first so a
// name like "wall_normal_color" resolves to the normal map it actually is.
// Keywords match whole tokens only: "display" is not "disp".
var Rules = []Rule{
	{RoleNormal, []string{"normal", "norm", "nrm", "nrml", "nor"}},
	{RoleDisplacement, []string{"displacement", "displace", "disp", "dsp", "heightmap", "height"}},
	{RoleRoughness, []string{"roughness", "rough", "rgh"}},
	{RoleMetallic, []string{"metallic", "metalness", "metal", "met", "mlt"}},
	{RoleOpacity, []string{"opacity", "opac", "alpha"}},
	{RoleEmission, []string{"emission", "emissive", "emit", "emm"}},
	{RoleBaseColor, []string{
		"basecolor", "basecolour", "base", "albedo", "alb", "diffuse", "diff",
		"color", "colour", "col",
	}},
}

// colorspaceTable is the default colorspace per role. Unlisted roles
// (including RoleUnknown) are raw.
var colorspaceTable = map[Role]Colorspace{
	RoleBaseColor:    ColorspaceSRGB,
	RoleEmission:     ColorspaceSRGB,
	RoleRoughness:    ColorspaceRaw,
	RoleMetallic:     ColorspaceRaw,
	RoleNormal:       ColorspaceRaw,
	RoleDisplacement: ColorspaceRaw,
	RoleOpacity:      ColorspaceRaw,
}

// hdrExtensions hold linear data; color roles stored in them are scene_linear.
var hdrExtensions = map[string]bool{
	".exr":  true,
	".hdr":  true,
	".hdri": true,
	".tif":  true,
	".tiff": true,
}

// colorspaceTags are explicit filename tokens that pin a colorspace.
var colorspaceTags = map[string]Colorspace{
	"srgb":        ColorspaceSRGB,
	"lin":         ColorspaceSceneLinear,
	"linear":      ColorspaceSceneLinear,
	"scenelinear": ColorspaceSceneLinear,
	"acescg":      ColorspaceACEScg,
	"aces":        ColorspaceACEScg,
	"raw":         ColorspaceRaw,
}

// nameNoise tokens are dropped when deriving a material name.
var nameNoise = map[string]bool{
	"mat":      true,
	"material": true,
	"mtl":      true,
	"tex":      true,
	"final":    true,
}
